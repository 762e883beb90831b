package browser

import (
	"context"
	"fmt"
	"net/url"

	pw "github.com/playwright-community/playwright-go"

	"github.com/mgillard/leadtap/internal/engine/scraper"
)

const (
	// feedSelector matches the scrollable results container.
	feedSelector = `div[role="feed"]`
	// entrySelector matches one result entry inside the feed.
	entrySelector = `div[role="feed"] a[href*="/maps/place/"]`
)

// consentSelectors are probed in order; the first match is clicked.
// Absence of a consent dialog is not an error.
var consentSelectors = []string{
	`button[aria-label="Tout accepter"]`,
	`button[aria-label="Accept all"]`,
	`form[action*="consent"] button`,
	`button[jsname="b3VHJd"]`,
}

// OpenListing navigates to the results view for term in location, dismisses
// the consent interstitial if one shows up, then scrolls the feed to
// materialize lazy-loaded entries. The returned listing holds whatever
// rendered within the scroll budget, capped at 2 x MaxResults.
func (s *Session) OpenListing(ctx context.Context, term, location string) (scraper.Listing, error) {
	target := s.searchURL(term, location)

	timeout := float64(s.opts.Tuning.NavigationTimeout.Milliseconds())
	if _, err := s.page.Goto(target, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   pw.Float(timeout),
	}); err != nil {
		return nil, &scraper.NavigationError{URL: target, Err: err}
	}

	s.dismissConsent()
	scraper.ShortPause.Sleep(ctx)

	count := s.scrollFeed(ctx)

	limit := 2 * s.opts.MaxResults
	if limit > 0 && count > limit {
		count = limit
	}

	return &listing{session: s, count: count}, nil
}

// searchURL composes the maps search URL. When a geocoded center is known
// the viewport is pinned to it, which keeps results near the requested
// region instead of wherever the provider guesses.
func (s *Session) searchURL(term, location string) string {
	q := url.PathEscape(term + " " + location)
	if s.opts.Center != nil {
		zoom := s.opts.Zoom
		if zoom == 0 {
			zoom = 13
		}
		return fmt.Sprintf("https://www.google.com/maps/search/%s/@%.6f,%.6f,%dz?hl=fr",
			q, (*s.opts.Center)[1], (*s.opts.Center)[0], zoom)
	}
	return fmt.Sprintf("https://www.google.com/maps/search/%s?hl=fr", q)
}

// dismissConsent probes the known consent buttons and clicks the first one
// that exists. Best effort only.
func (s *Session) dismissConsent() {
	for _, sel := range consentSelectors {
		loc := s.page.Locator(sel).First()
		n, err := loc.Count()
		if err != nil || n == 0 {
			continue
		}
		if err := loc.Click(pw.LocatorClickOptions{Timeout: pw.Float(3000)}); err != nil {
			s.opts.Logger.Printf("CONSENT click failed sel=%q err=%v", sel, err)
			continue
		}
		s.page.WaitForTimeout(1000)
		return
	}
}

// scrollFeed performs the fixed scroll budget against the results container,
// pausing between passes so lazy-loaded entries can render. Returns the
// number of entries visible afterwards.
func (s *Session) scrollFeed(ctx context.Context) int {
	for pass := 0; pass < s.opts.Tuning.ScrollPasses; pass++ {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.page.Evaluate(fmt.Sprintf(
			`() => { const f = document.querySelector(%q); if (f) f.scrollTo(0, f.scrollHeight); }`,
			feedSelector)); err != nil {
			s.opts.Logger.Printf("SCROLL pass=%d err=%v", pass, err)
			break
		}
		scraper.ScrollPause.Sleep(ctx)
	}

	n, err := s.page.Locator(entrySelector).Count()
	if err != nil {
		return 0
	}
	return n
}
