package views

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgillard/leadtap/internal/engine/browser"
	"github.com/mgillard/leadtap/internal/engine/geo"
	"github.com/mgillard/leadtap/internal/engine/scraper"
	"github.com/mgillard/leadtap/internal/engine/storage"
	"github.com/mgillard/leadtap/internal/engine/webaudit"
	"github.com/mgillard/leadtap/internal/model"
	"github.com/mgillard/leadtap/internal/tui/styles"
)

// sharedState holds data shared between the scraper goroutine and TUI.
// Lives behind a pointer so it survives bubbletea's value copies.
type sharedState struct {
	mu     sync.Mutex
	event  model.ProgressEvent
	stats  *scraper.Stats
	cancel context.CancelFunc
}

func (s *sharedState) setEvent(ev model.ProgressEvent) {
	s.mu.Lock()
	s.event = ev
	s.mu.Unlock()
}

func (s *sharedState) getEvent() model.ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event
}

func (s *sharedState) getCancel() context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel
}

func (s *sharedState) getStats() *scraper.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ProgressModel manages the scan progress view.
type ProgressModel struct {
	cfg         model.ScrapeConfig
	progress    progress.Model
	startTime   time.Time
	done        bool
	confirmQuit bool
	err         error
	leads       int
	dbPath      string
	logPath     string
	width       int
	height      int
	shared      *sharedState
}

// Messages
type progressTickMsg time.Time

// ScanFinishedMsg is published when the scan goroutine returns, so the app
// can record the run. It then reaches this view to render the summary.
type ScanFinishedMsg struct {
	Err      error
	DBPath   string
	Location string
	Leads    int
}

func NewProgressModel(msg StartScanMsg) ProgressModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
	)

	m := ProgressModel{
		progress:  p,
		startTime: time.Now(),
		shared:    &sharedState{},
	}

	m.cfg = model.ScrapeConfig{
		Location:   msg.Location,
		Categories: msg.Categories,
		RadiusKm:   msg.RadiusKm,
		MinRating:  msg.MinRating,
		MaxResults: msg.MaxResults,
	}
	m.cfg.Defaults()

	ts := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("leadtap_%s", ts)
	os.MkdirAll(msg.Output, 0755)
	m.dbPath = filepath.Join(msg.Output, baseName+".db")
	m.logPath = filepath.Join(msg.Output, baseName+".log")

	return m
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(
		m.startScan(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m ProgressModel) startScan() tea.Cmd {
	shared := m.shared
	cfg := m.cfg
	dbPath := m.dbPath
	logPath := m.logPath

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			cancel()
			return ScanFinishedMsg{Err: err}
		}
		logger := log.New(logFile, "", log.LstdFlags)

		store, err := storage.NewStore(dbPath)
		if err != nil {
			logFile.Close()
			cancel()
			return ScanFinishedMsg{Err: err}
		}

		existing, err := store.ExistingKeys(cfg.Location)
		if err != nil {
			store.Close()
			logFile.Close()
			cancel()
			return ScanFinishedMsg{Err: err}
		}
		cfg.ExcludeExisting = existing

		browserOpts := browser.Options{
			MaxResults: cfg.MaxResults,
			Tuning:     cfg.Tuning,
			Logger:     logger,
		}
		if place, gerr := geo.Locate(ctx, cfg.Location); gerr != nil {
			logger.Printf("GEOCODE_FAIL location=%q err=%v", cfg.Location, gerr)
		} else {
			center := place.Center
			browserOpts.Center = &center
			browserOpts.Zoom = geo.ZoomForRadius(cfg.RadiusKm)
		}

		stats := &scraper.Stats{}
		shared.mu.Lock()
		shared.stats = stats
		shared.cancel = cancel
		shared.mu.Unlock()

		res := scraper.Run(ctx, cfg, scraper.Deps{
			NewSession: browser.Factory(browserOpts),
			Analyzer:   webaudit.NewAuditor(),
		}, logger, &scraper.RunOptions{
			Stats:      stats,
			OnProgress: shared.setEvent,
		})

		leads := len(res.Candidates)
		if leads > 0 {
			if _, uerr := store.UpsertBatch(res.Candidates); uerr != nil {
				logger.Printf("STORE_ERROR err=%v", uerr)
			}
		}

		store.Close()
		logFile.Close()

		var runErr error
		if res.Error != "" && ctx.Err() == nil {
			runErr = fmt.Errorf("%s", res.Error)
		}
		return ScanFinishedMsg{
			Err:      runErr,
			DBPath:   dbPath,
			Location: cfg.Location,
			Leads:    leads,
		}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if cancel := m.shared.getCancel(); cancel != nil {
				cancel()
			}
			return m, tea.Quit
		case "esc":
			if m.done {
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			if m.confirmQuit {
				// Second esc: cancel and go home
				if cancel := m.shared.getCancel(); cancel != nil {
					cancel()
				}
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			// First esc: show confirmation
			m.confirmQuit = true
			return m, nil
		case "enter":
			if m.done {
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			if m.confirmQuit {
				m.confirmQuit = false
				return m, nil
			}
		}
		// Any other key cancels the confirmation
		if m.confirmQuit {
			m.confirmQuit = false
		}
	case progressTickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case ScanFinishedMsg:
		m.done = true
		m.err = msg.Err
		m.leads = msg.Leads
		return m, nil
	}

	var cmd tea.Cmd
	var pModel tea.Model
	pModel, cmd = m.progress.Update(msg)
	m.progress = pModel.(progress.Model)
	return m, cmd
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Scanning: %q in %s",
		strings.Join(m.cfg.Categories, ", "), m.cfg.Location)))
	b.WriteString("\n\n")

	statsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(34).
		Render(m.renderStats())
	b.WriteString(statsBox)
	b.WriteString("\n\n")

	ev := m.shared.getEvent()
	var pct float64
	if ev.Total > 0 {
		pct = float64(ev.Current) / float64(ev.Total)
	}
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n")

	if !m.done && ev.Message != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(ev.Message))
	}
	b.WriteString("\n\n")

	if m.done {
		if m.err != nil {
			b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Success).Bold(true).
				Render(fmt.Sprintf("Complete! %d leads stored", m.leads)))
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
				Render(fmt.Sprintf("Database: %s", m.dbPath)))
		}
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter/esc back"))
	} else if m.confirmQuit {
		b.WriteString(styles.ErrorText.Render("Press ESC again to stop the scan and go back"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("esc confirm stop • any key continue"))
	} else {
		b.WriteString(styles.StatusBar.Render("esc cancel • ctrl+c quit"))
	}

	return b.String()
}

func (m ProgressModel) renderStats() string {
	var sb strings.Builder
	elapsed := time.Since(m.startTime).Truncate(time.Second)

	ev := m.shared.getEvent()
	var examined, accepted, skipped, navErrors, auditFails int64
	if stats := m.shared.getStats(); stats != nil {
		examined = stats.TotalScraped.Load()
		accepted = stats.Accepted.Load()
		skipped = stats.Skipped.Load() + stats.Filtered.Load() + stats.GoodSites.Load()
		navErrors = stats.NavErrors.Load()
		auditFails = stats.AuditFailures.Load()
	}

	statLabel := lipgloss.NewStyle().Foreground(styles.Muted).Width(12)
	statVal := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)

	row := func(label string, value string) {
		sb.WriteString(statLabel.Render(label))
		sb.WriteString(statVal.Render(value))
		sb.WriteString("\n")
	}

	phase := string(ev.Phase)
	if phase == "" {
		phase = "starting"
	}
	row("Phase:", phase)
	row("Leads:", fmt.Sprintf("%d/%d", ev.Current, ev.Total))
	row("Examined:", fmt.Sprintf("%d", examined))
	row("Accepted:", fmt.Sprintf("%d", accepted))
	row("Skipped:", fmt.Sprintf("%d", skipped))

	errStyle := statVal
	if navErrors > 0 {
		errStyle = lipgloss.NewStyle().Foreground(styles.Error).Bold(true)
	}
	sb.WriteString(statLabel.Render("Nav errors:"))
	sb.WriteString(errStyle.Render(fmt.Sprintf("%d", navErrors)))
	sb.WriteString("\n")

	if auditFails > 0 {
		warnStyle := lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)
		sb.WriteString(statLabel.Render("Audit fails:"))
		sb.WriteString(warnStyle.Render(fmt.Sprintf("%d", auditFails)))
		sb.WriteString("\n")
	}

	row("Elapsed:", elapsed.String())

	return sb.String()
}
