package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgillard/leadtap/internal/tui/styles"
)

// Field indices for the scan form.
const (
	fieldLocation = iota
	fieldCategories
	fieldRadius
	fieldMinRating
	fieldMaxResults
	fieldOutput
	fieldCount
)

type SearchModel struct {
	inputs  []textinput.Model
	focused int
	err     string
}

func NewSearchModel() SearchModel {
	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldLocation] = newInput("Liège, Namur, Bruxelles...", 40)
	inputs[fieldCategories] = newInput("boulangeries, garages, coiffeurs", 60)
	inputs[fieldRadius] = newInput("10", 10)
	inputs[fieldMinRating] = newInput("0 = off", 10)
	inputs[fieldMaxResults] = newInput("20", 10)
	inputs[fieldOutput] = newInput("./projects", 50)

	m := SearchModel{inputs: inputs}
	m.inputs[fieldLocation].Focus()
	return m
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	if width > 0 {
		ti.Width = width
	}
	return ti
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }

		case "up", "shift+tab":
			m.err = ""
			m.focusDelta(-1)
			return m, textinput.Blink

		case "down", "tab":
			m.err = ""
			m.focusDelta(1)
			return m, textinput.Blink

		case "enter":
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *SearchModel) focusDelta(dir int) {
	m.inputs[m.focused].Blur()
	m.focused = (m.focused + dir + fieldCount) % fieldCount
	m.inputs[m.focused].Focus()
}

func (m *SearchModel) submit() tea.Cmd {
	location := strings.TrimSpace(m.inputs[fieldLocation].Value())
	if location == "" {
		m.err = "Location is required"
		return nil
	}
	output := strings.TrimSpace(m.inputs[fieldOutput].Value())
	if output == "" {
		output = "./projects"
	}

	radius := 10.0
	if v := strings.TrimSpace(m.inputs[fieldRadius].Value()); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			m.err = "Radius must be a positive number"
			return nil
		}
		radius = r
	}

	minRating := 0.0
	if v := strings.TrimSpace(m.inputs[fieldMinRating].Value()); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 5 {
			m.err = "Min rating must be between 0 and 5"
			return nil
		}
		minRating = r
	}

	maxResults := 20
	if v := strings.TrimSpace(m.inputs[fieldMaxResults].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			m.err = "Max results must be a positive number"
			return nil
		}
		maxResults = n
	}

	var categories []string
	for _, c := range strings.Split(m.inputs[fieldCategories].Value(), ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}

	return func() tea.Msg {
		return StartScanMsg{
			Location:   location,
			Categories: categories,
			RadiusKm:   radius,
			MinRating:  minRating,
			MaxResults: maxResults,
			Output:     output,
		}
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Scan") + "\n\n")

	b.WriteString(m.renderField("Location:", fieldLocation))
	b.WriteString(m.renderField("Categories:", fieldCategories))
	if m.focused == fieldCategories {
		hint := lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("  comma-separated search terms, empty = generic businesses")
		b.WriteString(hint + "\n")
	}
	b.WriteString(m.renderField("Radius (km):", fieldRadius))
	b.WriteString(m.renderField("Min rating:", fieldMinRating))
	b.WriteString(m.renderField("Max results:", fieldMaxResults))
	b.WriteString(m.renderField("Output:", fieldOutput))

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render("  " + m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBar.Render("enter start • tab next • esc back"))

	return styles.Border.Render(b.String())
}

func (m SearchModel) renderField(label string, idx int) string {
	l := styles.Label.Render(label)
	v := m.inputs[idx].View()
	return fmt.Sprintf("%s %s\n", l, v)
}

// Messages
type NavigateToHome struct{}

type StartScanMsg struct {
	Location   string
	Categories []string
	RadiusKm   float64
	MinRating  float64
	MaxResults int
	Output     string
}
