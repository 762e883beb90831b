package browser

import (
	"context"

	pw "github.com/playwright-community/playwright-go"

	"github.com/mgillard/leadtap/internal/engine/scraper"
)

// listing is a positional view over the rendered result feed. It never keeps
// entry handles: activating a detail panel reshuffles the feed DOM, so every
// Extract re-acquires the live entry list and indexes into it.
type listing struct {
	session *Session
	count   int
}

func (l *listing) Len() int { return l.count }

// Extract clicks entry i, waits for the detail panel to settle and reads the
// configured field chains out of it. Vanished entries and nameless panels
// yield (nil, nil).
func (l *listing) Extract(ctx context.Context, i int) (*scraper.RawCandidate, error) {
	s := l.session

	entries := s.page.Locator(entrySelector)
	n, err := entries.Count()
	if err != nil {
		return nil, err
	}
	if i >= n {
		// the feed shrank under us
		return nil, nil
	}

	entry := entries.Nth(i)
	sourceURL, _ := entry.GetAttribute("href", pw.LocatorGetAttributeOptions{Timeout: pw.Float(2000)})

	if err := entry.Click(pw.LocatorClickOptions{Timeout: pw.Float(5000)}); err != nil {
		s.opts.Logger.Printf("ENTRY_CLICK index=%d err=%v", i, err)
		return nil, nil
	}

	s.page.WaitForTimeout(float64(s.opts.Tuning.SettleDelay.Milliseconds()))

	raw := &scraper.RawCandidate{
		SourceURL:  sourceURL,
		Name:       s.opts.Fields.Text(s.page, FieldName),
		Address:    s.opts.Fields.Text(s.page, FieldAddress),
		Phone:      s.opts.Fields.Text(s.page, FieldPhone),
		RatingText: s.opts.Fields.Text(s.page, FieldRating),
		ReviewText: s.opts.Fields.Text(s.page, FieldReviews),
		Category:   s.opts.Fields.Text(s.page, FieldCategory),
		WebsiteURL: s.opts.Fields.Attr(s.page, FieldWebsite, "href"),
	}

	if raw.Name == "" {
		// detail panels occasionally fail to render; not an error
		return nil, nil
	}

	scraper.ShortPause.Sleep(ctx)
	return raw, nil
}
