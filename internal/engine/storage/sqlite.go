package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mgillard/leadtap/internal/model"
)

// Store persists leads in a sqlite database, keyed by (name, address).
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		phone TEXT,
		rating REAL,
		review_count INTEGER,
		category TEXT,
		source_url TEXT,
		website TEXT,
		website_score INTEGER,
		website_issues TEXT,
		location_query TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name, address)
	);
	CREATE INDEX IF NOT EXISTS idx_leads_location ON leads(location_query);
	CREATE INDEX IF NOT EXISTS idx_leads_rating ON leads(rating);
	CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(website_score);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// ExistingKeys returns the exclusion keys of every lead already stored for
// a location, used to seed a run's dedup set. An empty location returns all
// keys.
func (s *Store) ExistingKeys(location string) (map[string]struct{}, error) {
	query := "SELECT name, address FROM leads"
	args := []any{}
	if location != "" {
		query += " WHERE location_query = ?"
		args = append(args, location)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading existing leads: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var name, address string
		if err := rows.Scan(&name, &address); err != nil {
			return nil, err
		}
		keys[model.ExclusionKey(name, address)] = struct{}{}
	}
	return keys, rows.Err()
}

// UpsertBatch writes the run's candidates, updating the mutable columns of
// leads that already exist. Returns the number of rows written.
func (s *Store) UpsertBatch(cands []model.Candidate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO leads
		(name, address, phone, rating, review_count, category, source_url,
		 website, website_score, website_issues, location_query)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(name, address) DO UPDATE SET
			phone = excluded.phone,
			rating = excluded.rating,
			review_count = excluded.review_count,
			category = excluded.category,
			source_url = excluded.source_url,
			website = excluded.website,
			website_score = excluded.website_score,
			website_issues = excluded.website_issues,
			location_query = excluded.location_query,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	written := 0
	for i := range cands {
		c := &cands[i]
		var issues any
		if len(c.WebsiteIssues) > 0 {
			b, err := json.Marshal(c.WebsiteIssues)
			if err == nil {
				issues = string(b)
			}
		}
		if _, err := stmt.Exec(
			c.Name, c.Address, c.Phone, c.Rating, c.ReviewCount,
			c.Category, c.SourceURL, c.WebsiteURL, c.WebsiteScore,
			issues, c.LocationQuery,
		); err != nil {
			continue
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return written, nil
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM leads").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
