package scraper

import "context"

// RawCandidate is the untyped field bag read out of a rendered detail panel.
// Normalization turns it into a model.Candidate.
type RawCandidate struct {
	Name       string
	Address    string
	Phone      string
	RatingText string
	ReviewText string
	Category   string
	SourceURL  string
	WebsiteURL string
}

// Listing is the set of result entries rendered for one category search.
// Entries are addressed by position, never by handle: the detail-panel
// activation mutates the surrounding DOM, so implementations must re-acquire
// the live entry list on every Extract call.
type Listing interface {
	// Len is the number of entries rendered within the scroll budget,
	// already capped by the loader.
	Len() int

	// Extract activates entry i and reads its detail fields.
	// A (nil, nil) return means the entry was skipped: its handle vanished
	// or the panel yielded no name. Neither case fails the run.
	Extract(ctx context.Context, i int) (*RawCandidate, error)
}

// Session owns one headless browser and one page for the duration of a run.
// No two runs may share a session; Close must be idempotent.
type Session interface {
	OpenListing(ctx context.Context, term, location string) (Listing, error)
	Close() error
}

// SessionFactory acquires a fresh session. Startup failure is reported as a
// *SessionError.
type SessionFactory func(ctx context.Context) (Session, error)

// Analyzer scores a candidate's website. Higher scores mean a worse web
// presence, so a score under the good-site threshold disqualifies the lead.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (score int, issues []string, err error)
}
