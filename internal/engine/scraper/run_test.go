package scraper

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/mgillard/leadtap/internal/model"
)

// stubListing serves canned raw candidates; a negative index in panicAt
// disables the panic trigger.
type stubListing struct {
	raws    []*RawCandidate
	errAt   map[int]error
	panicAt int
}

func newStubListing(raws ...*RawCandidate) *stubListing {
	return &stubListing{raws: raws, panicAt: -1}
}

func (l *stubListing) Len() int { return len(l.raws) }

func (l *stubListing) Extract(_ context.Context, i int) (*RawCandidate, error) {
	if i == l.panicAt {
		panic("detached frame")
	}
	if err, ok := l.errAt[i]; ok {
		return nil, err
	}
	if i >= len(l.raws) {
		return nil, nil
	}
	return l.raws[i], nil
}

type stubSession struct {
	listings map[string]Listing
	openErr  map[string]error
	closed   int
}

func (s *stubSession) OpenListing(_ context.Context, term, _ string) (Listing, error) {
	if err, ok := s.openErr[term]; ok {
		return nil, err
	}
	if l, ok := s.listings[term]; ok {
		return l, nil
	}
	return newStubListing(), nil
}

func (s *stubSession) Close() error {
	s.closed++
	return nil
}

func factoryFor(s *stubSession) SessionFactory {
	return func(context.Context) (Session, error) { return s, nil }
}

type stubAnalyzer struct {
	scores map[string]int
	issues map[string][]string
	errs   map[string]error
}

func (a *stubAnalyzer) Analyze(_ context.Context, url string) (int, []string, error) {
	if err, ok := a.errs[url]; ok {
		return 0, nil, err
	}
	return a.scores[url], a.issues[url], nil
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestRunFiltersAndRanks(t *testing.T) {
	sess := &stubSession{listings: map[string]Listing{
		"restaurants": newStubListing(
			&RawCandidate{Name: "Top Table", Address: "Rue A 1", RatingText: "4,8"},
			&RawCandidate{Name: "Friterie Lo", Address: "Rue B 2", RatingText: "3,9"},
			&RawCandidate{Name: "Brasserie M", Address: "Rue C 3", RatingText: "4,2"},
		),
	}}

	cfg := model.ScrapeConfig{
		Location:   "Liège",
		Categories: []string{"restaurants"},
		MinRating:  4,
		MaxResults: 2,
	}

	res := Run(context.Background(), cfg, Deps{NewSession: factoryFor(sess)}, discard(), nil)

	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.TotalScraped != 3 {
		t.Errorf("TotalScraped = %d, want 3", res.TotalScraped)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(res.Candidates), res.Candidates)
	}
	// no-website group ranks ascending by rating
	if res.Candidates[0].Name != "Brasserie M" || res.Candidates[1].Name != "Top Table" {
		t.Errorf("order = [%s %s], want [Brasserie M, Top Table]",
			res.Candidates[0].Name, res.Candidates[1].Name)
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestRunEnrichmentGate(t *testing.T) {
	sess := &stubSession{listings: map[string]Listing{
		"plombiers": newStubListing(
			&RawCandidate{Name: "Weak Web", Address: "1", WebsiteURL: "http://weak.example"},
			&RawCandidate{Name: "Good Web", Address: "2", WebsiteURL: "https://good.example"},
			&RawCandidate{Name: "No Web", Address: "3"},
		),
	}}
	an := &stubAnalyzer{
		scores: map[string]int{"http://weak.example": 62, "https://good.example": 18},
		issues: map[string][]string{"http://weak.example": {"no HTTPS", "no viewport meta tag"}},
	}

	cfg := model.ScrapeConfig{Location: "Namur", Categories: []string{"plombiers"}}
	stats := &Stats{}
	res := Run(context.Background(), cfg, Deps{NewSession: factoryFor(sess), Analyzer: an},
		discard(), &RunOptions{Stats: stats})

	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.TotalScraped != 3 {
		t.Errorf("TotalScraped = %d, want 3 (good sites still count as examined)", res.TotalScraped)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(res.Candidates), res.Candidates)
	}

	var weak *model.Candidate
	for i := range res.Candidates {
		if res.Candidates[i].Name == "Good Web" {
			t.Fatal("candidate with a healthy site was retained")
		}
		if res.Candidates[i].Name == "Weak Web" {
			weak = &res.Candidates[i]
		}
	}
	if weak == nil {
		t.Fatal("weak-site candidate missing from results")
	}
	if weak.WebsiteScore == nil || *weak.WebsiteScore != 62 {
		t.Errorf("weak-site score not attached: %+v", weak)
	}
	if len(weak.WebsiteIssues) != 2 {
		t.Errorf("weak-site issues not attached: %v", weak.WebsiteIssues)
	}
	if stats.GoodSites.Load() != 1 {
		t.Errorf("GoodSites = %d, want 1", stats.GoodSites.Load())
	}
}

func TestRunAuditFailureKeepsCandidate(t *testing.T) {
	sess := &stubSession{listings: map[string]Listing{
		"garages": newStubListing(
			&RawCandidate{Name: "Garage Dupont", Address: "1", WebsiteURL: "http://down.example"},
		),
	}}
	an := &stubAnalyzer{errs: map[string]error{"http://down.example": errors.New("connect: timeout")}}

	stats := &Stats{}
	res := Run(context.Background(),
		model.ScrapeConfig{Location: "Huy", Categories: []string{"garages"}},
		Deps{NewSession: factoryFor(sess), Analyzer: an},
		discard(), &RunOptions{Stats: stats})

	if len(res.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(res.Candidates))
	}
	c := res.Candidates[0]
	if c.WebsiteScore != nil {
		t.Errorf("score attached despite audit failure: %d", *c.WebsiteScore)
	}
	if stats.AuditFailures.Load() != 1 {
		t.Errorf("AuditFailures = %d, want 1", stats.AuditFailures.Load())
	}
}

func TestRunNavigationErrorAbandonsCategory(t *testing.T) {
	sess := &stubSession{
		openErr: map[string]error{
			"coiffeurs": &NavigationError{URL: "https://maps.example/coiffeurs", Err: errors.New("timeout")},
		},
		listings: map[string]Listing{
			"fleuristes": newStubListing(&RawCandidate{Name: "Aux Fleurs", Address: "1"}),
		},
	}

	stats := &Stats{}
	res := Run(context.Background(),
		model.ScrapeConfig{Location: "Verviers", Categories: []string{"coiffeurs", "fleuristes"}},
		Deps{NewSession: factoryFor(sess)},
		discard(), &RunOptions{Stats: stats})

	if res.Error != "" {
		t.Fatalf("navigation error escaped to the result: %s", res.Error)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Name != "Aux Fleurs" {
		t.Fatalf("second category not scraped: %+v", res.Candidates)
	}
	if stats.NavErrors.Load() != 1 {
		t.Errorf("NavErrors = %d, want 1", stats.NavErrors.Load())
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestRunSessionStartupFailure(t *testing.T) {
	factory := func(context.Context) (Session, error) {
		return nil, &SessionError{Err: errors.New("browser binary not found")}
	}

	res := Run(context.Background(),
		model.ScrapeConfig{Location: "Mons"},
		Deps{NewSession: factory}, discard(), nil)

	if res.Error == "" {
		t.Fatal("expected an error for session startup failure")
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(res.Candidates))
	}
}

func TestRunPanicRecovery(t *testing.T) {
	l := newStubListing(
		&RawCandidate{Name: "Before", Address: "1"},
		&RawCandidate{Name: "Boom", Address: "2"},
	)
	l.panicAt = 1
	sess := &stubSession{listings: map[string]Listing{"cafés": l}}

	res := Run(context.Background(),
		model.ScrapeConfig{Location: "Liège", Categories: []string{"cafés"}},
		Deps{NewSession: factoryFor(sess)}, discard(), nil)

	if res.Error == "" {
		t.Fatal("panic not surfaced in the result")
	}
	if !strings.Contains(res.Error, "detached frame") {
		t.Errorf("error does not carry the panic value: %s", res.Error)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Name != "Before" {
		t.Fatalf("partial results lost: %+v", res.Candidates)
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestRunProgressEvents(t *testing.T) {
	sess := &stubSession{listings: map[string]Listing{
		"boulangeries": newStubListing(
			&RawCandidate{Name: "Pain Quotidien", Address: "1"},
			&RawCandidate{Name: "Petit Four", Address: "2"},
		),
	}}

	var events []model.ProgressEvent
	res := Run(context.Background(),
		model.ScrapeConfig{Location: "Liège", Categories: []string{"boulangeries"}},
		Deps{NewSession: factoryFor(sess)}, discard(),
		&RunOptions{OnProgress: func(ev model.ProgressEvent) { events = append(events, ev) }})

	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if len(events) < 3 {
		t.Fatalf("too few events: %d", len(events))
	}
	if events[0].Phase != model.PhaseInit {
		t.Errorf("first phase = %s, want %s", events[0].Phase, model.PhaseInit)
	}
	done := 0
	for i, ev := range events {
		if ev.Phase == model.PhaseDone {
			done++
			if i != len(events)-1 {
				t.Errorf("done emitted before the final event (index %d of %d)", i, len(events))
			}
		}
		if ev.Current > ev.Total {
			t.Errorf("event %d: current %d exceeds total %d", i, ev.Current, ev.Total)
		}
	}
	if done != 1 {
		t.Errorf("done emitted %d times, want exactly 1", done)
	}
}

func TestRunProgressSinkPanicIgnored(t *testing.T) {
	sess := &stubSession{listings: map[string]Listing{
		"librairies": newStubListing(&RawCandidate{Name: "Livres & Co", Address: "1"}),
	}}

	res := Run(context.Background(),
		model.ScrapeConfig{Location: "Liège", Categories: []string{"librairies"}},
		Deps{NewSession: factoryFor(sess)}, discard(),
		&RunOptions{OnProgress: func(model.ProgressEvent) { panic("misbehaving sink") }})

	if res.Error != "" {
		t.Fatalf("sink panic aborted the run: %s", res.Error)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(res.Candidates))
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := &stubSession{listings: map[string]Listing{
		"bars": newStubListing(&RawCandidate{Name: "Never", Address: "1"}),
	}}

	res := Run(ctx, model.ScrapeConfig{Location: "Liège", Categories: []string{"bars"}},
		Deps{NewSession: factoryFor(sess)}, discard(), nil)

	if res.Error == "" {
		t.Fatal("cancelled run should report the context error")
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("cancelled run still scraped: %+v", res.Candidates)
	}
}
