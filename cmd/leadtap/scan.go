package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mgillard/leadtap/internal/engine/browser"
	"github.com/mgillard/leadtap/internal/engine/geo"
	"github.com/mgillard/leadtap/internal/engine/scraper"
	"github.com/mgillard/leadtap/internal/engine/storage"
	"github.com/mgillard/leadtap/internal/engine/webaudit"
	"github.com/mgillard/leadtap/internal/model"
	"github.com/mgillard/leadtap/internal/tui"
)

func runScan(args []string) error {
	var cfg model.ScrapeConfig
	var categoriesStr, outputDir string
	var noAudit bool
	var navTimeout int

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	fs.StringVar(&outputDir, "output", "", "Output directory for project files (required)")
	fs.StringVar(&cfg.Location, "location", "", "Search region, e.g. \"Liège\" (required)")
	fs.Float64Var(&cfg.RadiusKm, "radius", 10, "Search radius in km")
	fs.StringVar(&categoriesStr, "categories", "", "Comma-separated search terms (default: entreprises)")
	fs.Float64Var(&cfg.MinRating, "min-rating", 0, "Minimum star rating filter (0 = off)")
	fs.IntVar(&cfg.MaxResults, "max-results", 20, "Maximum prospects to collect")
	fs.IntVar(&cfg.Tuning.GoodSiteThreshold, "good-site-threshold", 25, "Audit score below which a site is considered fine and the lead dropped")
	fs.IntVar(&navTimeout, "nav-timeout", 60, "Listing page load timeout in seconds")
	fs.BoolVar(&noAudit, "no-audit", false, "Skip website audits")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: leadtap scan [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  leadtap scan -location \"Liège\" -categories boulangeries -output ./projects\n")
		fmt.Fprintf(os.Stderr, "  leadtap scan -location Namur -categories \"garages,coiffeurs\" -min-rating 4 -max-results 30 -output ./projects\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Location == "" {
		return fmt.Errorf("-location is required")
	}
	if outputDir == "" {
		return fmt.Errorf("-output is required")
	}

	if categoriesStr != "" {
		cfg.Categories = strings.Split(categoriesStr, ",")
		for i := range cfg.Categories {
			cfg.Categories[i] = strings.TrimSpace(cfg.Categories[i])
		}
	}
	cfg.Tuning.NavigationTimeout = time.Duration(navTimeout) * time.Second
	cfg.Defaults()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	ts := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("leadtap_%s", ts)
	dbPath := filepath.Join(outputDir, baseName+".db")
	logPath := filepath.Join(outputDir, baseName+".log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)
	logger.Printf("=== Session start: location=%q categories=%v radius=%.1f min_rating=%.1f max_results=%d ===",
		cfg.Location, cfg.Categories, cfg.RadiusKm, cfg.MinRating, cfg.MaxResults)

	fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	// Geocode the region. Failure is not fatal: the maps search still works
	// from the location string, just with less viewport control.
	browserOpts := browser.Options{
		MaxResults: cfg.MaxResults,
		Tuning:     cfg.Tuning,
		Logger:     logger,
	}
	if place, err := geo.Locate(ctx, cfg.Location); err != nil {
		logger.Printf("GEOCODE_FAIL location=%q err=%v", cfg.Location, err)
		fmt.Fprintf(os.Stderr, "Geocoding failed (%v), continuing without viewport pinning\n", err)
	} else {
		center := place.Center
		browserOpts.Center = &center
		browserOpts.Zoom = geo.ZoomForRadius(cfg.RadiusKm)
		fmt.Fprintf(os.Stderr, "Region: %s (zoom %d)\n", place.DisplayName, browserOpts.Zoom)
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	existing, err := store.ExistingKeys(cfg.Location)
	if err != nil {
		return fmt.Errorf("reading existing leads: %w", err)
	}
	cfg.ExcludeExisting = existing

	deps := scraper.Deps{
		NewSession: browser.Factory(browserOpts),
	}
	if !noAudit {
		deps.Analyzer = webaudit.NewAuditor()
	}

	startTime := time.Now()
	res := scraper.Run(ctx, cfg, deps, logger, &scraper.RunOptions{
		OnProgress: func(ev model.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "\r\033[K[%s] %d/%d %s", ev.Phase, ev.Current, ev.Total, ev.Message)
		},
	})
	fmt.Fprintln(os.Stderr)

	stored := 0
	if len(res.Candidates) > 0 {
		stored, err = store.UpsertBatch(res.Candidates)
		if err != nil {
			logger.Printf("STORE_ERROR err=%v", err)
			fmt.Fprintf(os.Stderr, "warning: storing leads failed: %v\n", err)
		}
	}

	duration := time.Since(startTime).Truncate(time.Second)
	total, _ := store.Count()

	logger.Printf("Done: accepted=%d examined=%d stored=%d total_in_db=%d error=%q",
		len(res.Candidates), res.TotalScraped, stored, total, res.Error)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  LeadTap Complete\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Location:   %s\n", cfg.Location)
	fmt.Fprintf(os.Stderr, "  Categories: %s\n", strings.Join(cfg.Categories, ", "))
	fmt.Fprintf(os.Stderr, "  Examined:   %d\n", res.TotalScraped)
	fmt.Fprintf(os.Stderr, "  Prospects:  %d\n", len(res.Candidates))
	fmt.Fprintf(os.Stderr, "  Stored:     %d (total in db: %d)\n", stored, total)
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", duration)
	fmt.Fprintf(os.Stderr, "  Database:   %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "  Log:        %s\n", logPath)
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")

	tui.SaveRecent(dbPath)

	if res.Error != "" && ctx.Err() == nil {
		return fmt.Errorf("scan finished with error: %s", res.Error)
	}
	return nil
}
