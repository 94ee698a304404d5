// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
)

const (
	tabOverview = iota
	tabSessions
	tabOperators
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the stats browser.
type Model struct {
	report stats.Report
	cfg    model.StatsConfig

	tabs      []string
	activeTab int
	overview  viewport.Model
	sessions  table.Model
	operators table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model over a prepared report.
func NewModel(report stats.Report, cfg model.StatsConfig) *Model {
	m := &Model{
		report:    report,
		cfg:       cfg,
		tabs:      []string{"Overview", "Sessions", "Operators"},
		overview:  viewport.New(80, 20),
		sessions:  buildTable(stats.SessionColumns, stats.SessionRows(report.Sessions)),
		operators: buildTable(stats.OpColumns, stats.OpRows(report.OpAggsAll)),
	}
	m.renderOverview()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = min(m.cfg.CurveWindow+1, max(len(m.report.Sessions), 1))
			m.renderOverview()
			return m, nil
		case "-":
			m.cfg.CurveWindow = max(m.cfg.CurveWindow-1, 1)
			m.renderOverview()
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabSessions:
			m.sessions, cmd = m.sessions.Update(msg)
		case tabOperators:
			m.operators, cmd = m.operators.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs()
	footer := headerStyle.Render(m.renderHelp())
	return strings.Join([]string{header, m.renderBody(), footer}, "\n")
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabSessions:
		if len(m.report.Sessions) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(m.sessions.View())
	case tabOperators:
		if len(m.report.OpAggsAll) == 0 {
			return "No operator stats found."
		}
		return tableMutedStyle.Render(m.operators.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderHelp() string {
	help := "←/→: tab  ↑/↓: scroll  q: quit"
	if m.activeTab == tabOverview {
		help += "  -/=: curve window"
	}
	return help
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	m.sessions.Blur()
	m.operators.Blur()
	switch m.activeTab {
	case tabSessions:
		m.sessions.Focus()
	case tabOperators:
		m.operators.Focus()
	}
}

func (m *Model) updateLayout() {
	tabsHeight := lipgloss.Height(m.renderTabs())
	bodyHeight := max(1, m.height-tabsHeight-1)
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.sessions, &m.operators} {
		t.SetWidth(m.width)
		t.SetHeight(bodyHeight)
	}
}

func (m *Model) renderOverview() {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, m.report.Sessions); err != nil {
		m.overview.SetContent("Failed to render stats.")
		return
	}
	if len(m.report.Sessions) > 0 {
		width := m.width
		if width <= 0 {
			width = 80
		}
		label := len(stats.PeakLabel(m.report.Sessions))
		if err := stats.PlotScores(&buf, m.report.Sessions, stats.PlotWidthFor(width, label), 0); err != nil {
			m.overview.SetContent("Failed to render stats.")
			return
		}
		if err := stats.RenderScoreCurve(&buf, m.report.Sessions, m.cfg.CurveWindow); err != nil {
			m.overview.SetContent("Failed to render stats.")
			return
		}
	}
	m.overview.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func buildTable(headers []string, rows [][]string) table.Model {
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		width := lipgloss.Width(h)
		for _, row := range rows {
			width = max(width, lipgloss.Width(row[i]))
		}
		columns[i] = table.Column{Title: h, Width: width}
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, table.Row(row))
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(max(1, len(rows)+1)),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
