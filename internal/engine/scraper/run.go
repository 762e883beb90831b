package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/mgillard/leadtap/internal/model"
)

// Stats tracks live counters for one run. Counters are atomic so a UI can
// read them while the pipeline runs.
type Stats struct {
	TotalScraped  atomic.Int64 // records examined before filtering/dedup
	Accepted      atomic.Int64
	Skipped       atomic.Int64 // vanished handles, nameless panels
	Filtered      atomic.Int64 // dedup + rating rejections
	GoodSites     atomic.Int64 // dropped because the site is already good
	NavErrors     atomic.Int64
	AuditFailures atomic.Int64
}

// Deps are the collaborators of one run. Analyzer may be nil, in which case
// enrichment is skipped entirely.
type Deps struct {
	NewSession SessionFactory
	Analyzer   Analyzer
}

// RunOptions provides optional hooks for the pipeline.
type RunOptions struct {
	// OnProgress receives every progress event, in order.
	OnProgress ProgressFunc
	// Stats allows passing an external Stats object for live tracking.
	// If nil, Run creates its own.
	Stats *Stats
}

// Run executes one full scrape: it acquires a browser session, walks every
// configured category, extracts and normalizes candidates, enriches those
// exposing a website, then ranks and truncates the accumulated set.
//
// Expected failure modes never escape: a navigation timeout abandons the
// category, extraction and enrichment failures skip or degrade the
// candidate. Only session startup failure and panics reach
// ScrapeResult.Error, and partial candidates are returned alongside either.
func Run(ctx context.Context, cfg model.ScrapeConfig, deps Deps, logger *log.Logger, opts *RunOptions) (res *model.ScrapeResult) {
	cfg.Defaults()
	if opts == nil {
		opts = &RunOptions{}
	}
	stats := opts.Stats
	if stats == nil {
		stats = &Stats{}
	}

	em := &emitter{fn: opts.OnProgress, total: cfg.MaxResults}
	res = &model.ScrapeResult{}

	var accepted []model.Candidate
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("PANIC recovered: %v", r)
			res.Candidates = accepted
			res.TotalScraped = int(stats.TotalScraped.Load())
			res.Error = fmt.Sprintf("unexpected failure: %v", r)
		}
	}()

	em.emit(model.PhaseInit, "Starting browser session")

	sess, err := deps.NewSession(ctx)
	if err != nil {
		logger.Printf("SESSION_ERROR err=%v", err)
		res.Error = err.Error()
		return res
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Printf("ERROR closing session: %v", cerr)
		}
	}()

	seen := make(map[string]struct{})

	for ci, term := range cfg.Categories {
		if ctx.Err() != nil {
			break
		}
		if len(accepted) >= cfg.MaxResults {
			break
		}

		em.emit(model.PhaseSearching, fmt.Sprintf("Searching %q in %s", term, cfg.Location))

		listing, err := sess.OpenListing(ctx, term, cfg.Location)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var nav *NavigationError
			if errors.As(err, &nav) {
				stats.NavErrors.Add(1)
				logger.Printf("NAV_ERROR category=%q err=%v", term, err)
			} else {
				stats.NavErrors.Add(1)
				logger.Printf("ERROR category=%q err=%v", term, err)
			}
			continue
		}

		logger.Printf("LISTING category=%q entries=%d", term, listing.Len())
		scrapeListing(ctx, cfg, deps, listing, term, seen, &accepted, stats, em, logger)

		// pause between categories, except after the last one
		if ci < len(cfg.Categories)-1 && len(accepted) < cfg.MaxResults {
			LongPause.Sleep(ctx)
		}
	}

	ranked := Rank(accepted)
	if len(ranked) > cfg.MaxResults {
		ranked = ranked[:cfg.MaxResults]
	}

	res.Candidates = ranked
	res.TotalScraped = int(stats.TotalScraped.Load())
	if ctx.Err() != nil && res.Error == "" {
		res.Error = ctx.Err().Error()
	}

	em.current = len(ranked)
	em.emit(model.PhaseDone, fmt.Sprintf("%d prospects retained (%d examined)", len(ranked), res.TotalScraped))
	logger.Printf("DONE accepted=%d examined=%d nav_errors=%d audit_failures=%d",
		len(ranked), res.TotalScraped, stats.NavErrors.Load(), stats.AuditFailures.Load())

	return res
}

func scrapeListing(ctx context.Context, cfg model.ScrapeConfig, deps Deps, listing Listing, term string,
	seen map[string]struct{}, accepted *[]model.Candidate, stats *Stats, em *emitter, logger *log.Logger) {

	for i := 0; i < listing.Len(); i++ {
		if ctx.Err() != nil || len(*accepted) >= cfg.MaxResults {
			return
		}

		em.emit(model.PhaseExtracting, fmt.Sprintf("Reading entry %d/%d of %q", i+1, listing.Len(), term))

		raw, err := listing.Extract(ctx, i)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			stats.Skipped.Add(1)
			logger.Printf("EXTRACT_ERROR category=%q index=%d err=%v", term, i, err)
			continue
		}
		if raw == nil {
			stats.Skipped.Add(1)
			continue
		}

		stats.TotalScraped.Add(1)

		cand, ok := Normalize(raw, &cfg, seen)
		if !ok {
			stats.Filtered.Add(1)
			continue
		}

		phase := model.PhaseExtracting
		if cand.WebsiteURL != "" && deps.Analyzer != nil {
			phase = model.PhaseAnalyzing
			em.emit(model.PhaseAnalyzing, fmt.Sprintf("Auditing website of %s", cand.Name))

			actx, cancel := context.WithTimeout(ctx, cfg.Tuning.AuditTimeout)
			score, issues, aerr := deps.Analyzer.Analyze(actx, cand.WebsiteURL)
			cancel()

			switch {
			case aerr != nil:
				// best-effort enrichment: keep the candidate without it
				stats.AuditFailures.Add(1)
				logger.Printf("AUDIT_FAIL name=%q url=%s err=%v", cand.Name, cand.WebsiteURL, aerr)
			case score < cfg.Tuning.GoodSiteThreshold:
				// already-good web presence, not a prospect
				stats.GoodSites.Add(1)
				logger.Printf("GOOD_SITE name=%q url=%s score=%d", cand.Name, cand.WebsiteURL, score)
				continue
			default:
				s := score
				cand.WebsiteScore = &s
				cand.WebsiteIssues = issues
			}
		}

		*accepted = append(*accepted, *cand)
		stats.Accepted.Add(1)
		em.current = len(*accepted)
		em.emit(phase, fmt.Sprintf("%s retained", cand.Name))
	}
}
