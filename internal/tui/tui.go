// Package tui shows the checklist in an interactive list, with the status
// narrative one tab away.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/report"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	unsureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

const (
	defaultWidth  = 80
	defaultHeight = 20
	chromeHeight  = 4 // title, blank, blank, help
)

type modelT struct {
	title      string
	rows       []report.Row
	visible    []int // indices into rows
	cursor     int
	unsureOnly bool

	narrative  string
	narrowed   int // width the narrative was last rendered at
	reader     viewport.Model
	showReport bool
}

func initialModel(title string, rows []report.Row, narrative string) modelT {
	m := modelT{title: title, rows: rows, narrative: narrative, reader: viewport.New(defaultWidth, defaultHeight)}
	m.applyFilter()
	m.renderNarrative()
	return m
}

// renderNarrative lays the markdown out for the current viewport width.
// Raw markdown is shown when glamour cannot build a renderer.
func (m *modelT) renderNarrative() {
	width := m.reader.Width
	if width <= 0 {
		width = defaultWidth
	}
	m.narrowed = width
	content := m.narrative
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err == nil {
		if out, err := r.Render(m.narrative); err == nil {
			content = out
		}
	}
	m.reader.SetContent(content)
}

func (m *modelT) applyFilter() {
	visible := make([]int, 0, len(m.rows))
	for i, r := range m.rows {
		if m.unsureOnly && r.Status != model.GlyphUnsure {
			continue
		}
		visible = append(visible, i)
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.reader.Width = size.Width
		m.reader.Height = max(size.Height-chromeHeight, 1)
		if m.reader.Width != m.narrowed {
			m.renderNarrative()
		}
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.showReport = !m.showReport
		return m, nil
	}
	if m.showReport {
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, cmd
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.visible)-1, 0)
	case "u":
		// keep the selected row selected when it survives the filter
		selected := -1
		if m.cursor < len(m.visible) {
			selected = m.visible[m.cursor]
		}
		m.unsureOnly = !m.unsureOnly
		m.applyFilter()
		for i, idx := range m.visible {
			if idx == selected {
				m.cursor = i
			}
		}
	}
	return m, nil
}

func (m modelT) View() string {
	if m.showReport {
		return m.reportView()
	}
	var b strings.Builder
	unsure := 0
	for _, r := range m.rows {
		if r.Status == model.GlyphUnsure {
			unsure++
		}
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s checklist (%d rows, %d unconfirmed)", m.title, len(m.rows), unsure)))
	b.WriteString("\n\n")
	for i, idx := range m.visible {
		r := m.rows[idx]
		status := okStyle.Render(r.Status)
		if r.Status == model.GlyphUnsure {
			status = unsureStyle.Render(r.Status)
		}
		line := fmt.Sprintf("%-12s %s %s", r.Area, status, r.Expectation)
		if r.Notes != "" {
			line += "  (" + r.Notes + ")"
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(m.visible) == 0 {
		b.WriteString("nothing to show\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • u toggle unconfirmed only • tab status report • q quit"))
	b.WriteByte('\n')
	return b.String()
}

func (m modelT) reportView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s status report (%3.f%%)", m.title, m.reader.ScrollPercent()*100)))
	b.WriteString("\n\n")
	b.WriteString(m.reader.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ pgup/pgdn scroll • tab checklist • q quit"))
	b.WriteByte('\n')
	return b.String()
}

// Run launches the checklist viewer. narrative is the status document in
// markdown.
func Run(title string, rows []report.Row, narrative string) error {
	p := tea.NewProgram(initialModel(title, rows, narrative), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
