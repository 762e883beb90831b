package model

import (
	"strings"
	"time"
)

// Candidate represents a business prospect discovered by one scrape run,
// before persistence. Rating, ReviewCount and the website fields use
// pointers because "absent" and "zero" mean different things downstream.
type Candidate struct {
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	Category      string   `json:"category"`
	SourceURL     string   `json:"source_url"`
	WebsiteURL    string   `json:"website_url,omitempty"`
	WebsiteScore  *int     `json:"website_score,omitempty"`
	WebsiteIssues []string `json:"website_issues,omitempty"`
	LocationQuery string   `json:"location_query"`
}

// Key returns the deduplication identity: lowercased name + lowercased
// address. Address may be empty.
func (c *Candidate) Key() string {
	return ExclusionKey(c.Name, c.Address)
}

// ExclusionKey builds the composite dedup key used both for the pre-supplied
// exclusion set and for in-run duplicate suppression.
func ExclusionKey(name, address string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(address))
}

// ScrapeConfig holds all configuration for one scrape run.
type ScrapeConfig struct {
	Location   string
	RadiusKm   float64
	MinRating  float64  // 0 = no filter
	Categories []string // search terms, processed in order

	// ExcludeExisting seeds the dedup set with already-known prospects.
	// The pipeline treats it as read-only.
	ExcludeExisting map[string]struct{}

	MaxResults int

	Tuning Tuning
}

// Tuning exposes the empirically calibrated constants of the pipeline so
// they can be adjusted per provider without code changes.
type Tuning struct {
	GoodSiteThreshold int           // audit score below which a site is "already good"
	NavigationTimeout time.Duration // listing page load ceiling
	ScrollPasses      int           // scroll-to-bottom iterations per category
	SettleDelay       time.Duration // wait after activating an entry
	AuditTimeout      time.Duration // per-candidate website audit ceiling
}

// Defaults fills zero fields with the calibrated defaults and guarantees the
// config invariants (at least one category, a positive result cap).
func (c *ScrapeConfig) Defaults() {
	if len(c.Categories) == 0 {
		c.Categories = []string{"entreprises"}
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 20
	}
	if c.ExcludeExisting == nil {
		c.ExcludeExisting = map[string]struct{}{}
	}
	if c.Tuning.GoodSiteThreshold <= 0 {
		c.Tuning.GoodSiteThreshold = 25
	}
	if c.Tuning.NavigationTimeout <= 0 {
		c.Tuning.NavigationTimeout = 60 * time.Second
	}
	if c.Tuning.ScrollPasses <= 0 {
		c.Tuning.ScrollPasses = 5
	}
	if c.Tuning.SettleDelay <= 0 {
		c.Tuning.SettleDelay = 1500 * time.Millisecond
	}
	if c.Tuning.AuditTimeout <= 0 {
		c.Tuning.AuditTimeout = 20 * time.Second
	}
}

// Phase tags a ProgressEvent with the pipeline stage that produced it.
type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseSearching  Phase = "searching"
	PhaseExtracting Phase = "extracting"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseDone       Phase = "done"
)

// ProgressEvent is pushed to the progress sink after each unit of work.
// Current counts accepted candidates so far; Total is the configured cap.
type ProgressEvent struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	Phase   Phase  `json:"phase"`
}

// ScrapeResult accumulates the outcome of one run. A non-empty Error never
// implies Candidates is empty: partial results are always returned.
type ScrapeResult struct {
	Candidates   []Candidate `json:"candidates"`
	TotalScraped int         `json:"total_scraped"`
	Error        string      `json:"error,omitempty"`
}
