package browser

import (
	"context"
	"log"
	"os"

	pw "github.com/playwright-community/playwright-go"
	"github.com/paulmach/orb"

	"github.com/mgillard/leadtap/internal/engine/scraper"
	"github.com/mgillard/leadtap/internal/model"
)

const (
	viewportW = 1280
	viewportH = 900

	// A realistic identity string reduces the chance of being served a
	// degraded or blocking page.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Options configures a session. Center and Zoom are optional: when set the
// listing URL is pinned to that map viewport.
type Options struct {
	Center     *orb.Point // [lng, lat]
	Zoom       int
	MaxResults int
	Tuning     model.Tuning
	Fields     FieldChains
	Logger     *log.Logger
}

// Session drives one headless Chromium process and one page. It is owned by
// exactly one run and must never be shared.
type Session struct {
	opts    Options
	pw      *pw.Playwright
	browser pw.Browser
	page    pw.Page
	closed  bool
}

// Factory returns a scraper.SessionFactory opening sessions with opts.
// Each call acquires a fresh browser process; there is no shared instance.
func Factory(opts Options) scraper.SessionFactory {
	return func(ctx context.Context) (scraper.Session, error) {
		return Open(ctx, opts)
	}
}

// Open starts the browser and creates the single page used for the run.
// Any startup failure is returned as a *scraper.SessionError.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if opts.Fields == nil {
		opts.Fields = MapsFieldChains()
	}

	driver, err := pw.Run()
	if err != nil {
		return nil, &scraper.SessionError{Err: err}
	}

	launch := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	}
	if path := chromiumPath(); path != "" {
		launch.ExecutablePath = pw.String(path)
	}

	br, err := driver.Chromium.Launch(launch)
	if err != nil {
		driver.Stop()
		return nil, &scraper.SessionError{Err: err}
	}

	page, err := br.NewPage(pw.BrowserNewPageOptions{
		Viewport:  &pw.Size{Width: viewportW, Height: viewportH},
		UserAgent: pw.String(userAgent),
		Locale:    pw.String("fr-BE"),
	})
	if err != nil {
		br.Close()
		driver.Stop()
		return nil, &scraper.SessionError{Err: err}
	}

	return &Session{opts: opts, pw: driver, browser: br, page: page}, nil
}

// Close releases the page, the browser process and the driver. Safe to call
// more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var first error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			first = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// chromiumPath probes common install locations, used when playwright's own
// browser bundle is not present.
func chromiumPath() string {
	if p := os.Getenv("LEADTAP_CHROMIUM"); p != "" {
		return p
	}
	for _, p := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
