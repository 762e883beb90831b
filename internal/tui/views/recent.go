package views

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgillard/leadtap/internal/tui/styles"
)

type RecentEntry struct {
	Path     string
	Location string
	Leads    int
	RanAt    time.Time
}

type RecentModel struct {
	entries []RecentEntry
	cursor  int
}

func NewRecentModel(entries []RecentEntry) RecentModel {
	return RecentModel{entries: entries}
}

func (m RecentModel) Init() tea.Cmd {
	return nil
}

func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "esc", "enter":
			return m, func() tea.Msg { return NavigateToHome{} }
		}
	}
	return m, nil
}

func (m RecentModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Recent Scans") + "\n\n")

	if len(m.entries) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("No scans yet"))
	}

	for i, e := range m.entries {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		missing := ""
		if _, err := os.Stat(e.Path); err != nil {
			missing = lipgloss.NewStyle().Foreground(styles.Error).Render(" (missing)")
		}

		label := e.Path
		if e.Location != "" {
			label = fmt.Sprintf("%s • %s (%d leads)", e.Path, e.Location, e.Leads)
		}

		line := fmt.Sprintf("%s%s%s", cursor, style.Render(label), missing)
		b.WriteString(line + "\n")
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
			Render("    "+e.RanAt.Format("2006-01-02 15:04")) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • esc back"))

	return styles.Border.Render(b.String())
}
