package storage

import (
	"path/filepath"
	"testing"

	"github.com/mgillard/leadtap/internal/model"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "leads.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndExistingKeys(t *testing.T) {
	s := tempStore(t)

	rating := 4.2
	score := 62
	cands := []model.Candidate{
		{
			Name: "Chez Marcel", Address: "Rue Haute 12", Phone: "+32 4 222 00 00",
			Rating: &rating, Category: "restaurant",
			WebsiteURL: "http://marcel.example", WebsiteScore: &score,
			WebsiteIssues: []string{"no HTTPS"}, LocationQuery: "Liège",
		},
		{Name: "Aux Fleurs", Address: "Place Verte 3", LocationQuery: "Liège"},
	}

	n, err := s.UpsertBatch(cands)
	if err != nil {
		t.Fatalf("upserting: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d rows, want 2", n)
	}

	keys, err := s.ExistingKeys("Liège")
	if err != nil {
		t.Fatalf("reading keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
	if _, ok := keys[model.ExclusionKey("chez marcel", "RUE HAUTE 12")]; !ok {
		t.Error("exclusion key lookup is not case-insensitive")
	}

	// unrelated location sees nothing
	other, err := s.ExistingKeys("Namur")
	if err != nil {
		t.Fatalf("reading keys: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d keys for an unscraped location, want 0", len(other))
	}
}

func TestUpsertConflictUpdates(t *testing.T) {
	s := tempStore(t)

	first := []model.Candidate{{Name: "Garage Dupont", Address: "Quai 9", Phone: "old", LocationQuery: "Huy"}}
	if _, err := s.UpsertBatch(first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := []model.Candidate{{Name: "Garage Dupont", Address: "Quai 9", Phone: "new", LocationQuery: "Huy"}}
	if _, err := s.UpsertBatch(second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 (conflict should update, not duplicate)", count)
	}

	var phone string
	if err := s.db.QueryRow("SELECT phone FROM leads WHERE name = ?", "Garage Dupont").Scan(&phone); err != nil {
		t.Fatalf("reading row back: %v", err)
	}
	if phone != "new" {
		t.Errorf("phone = %q, want %q", phone, "new")
	}
}

func TestCountEmpty(t *testing.T) {
	s := tempStore(t)
	count, err := s.Count()
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
