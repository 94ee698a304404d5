// Package tui provides the Bubble Tea drill interface and the line display.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/scoring"
	"github.com/verte-zerg/tuimath/internal/session"
	"github.com/verte-zerg/tuimath/internal/stats"
)

type phase int

const (
	phaseAnswer phase = iota
	phaseName
	phaseDone
)

// Options configure the drill model.
type Options struct {
	Problems session.ProblemSource
	Clock    session.Clock
	Rules    session.Rules
	// Board decides whether the final score earns a name prompt. A nil board
	// or AskName=false skips the prompt.
	Board   *stats.Leaderboard
	AskName bool
	Logger  *log.Logger
}

// Result is what the model leaves behind once the program exits.
type Result struct {
	State   session.State
	Notices []session.Notice
	Name    string
	Named   bool
	Err     error
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	opts   Options
	logger *log.Logger
	styles palette
	input  textinput.Model

	width  int
	height int

	phase   phase
	state   session.State
	notices []session.Notice
	problem arith.Problem
	start   int64
	last    string

	name  string
	named bool
	err   error
}

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

// shownMsg arrives once the program has drawn its first frame.
type shownMsg struct{}

// NewModel constructs a drill model and draws the first problem.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 32
	in.Width = 12
	in.Focus()
	m := &Model{
		opts:   opts,
		logger: logger,
		styles: newPalette(lipgloss.DefaultRenderer()),
		input:  in,
		state:  session.New(),
	}
	m.nextProblem()
	return m
}

// Result returns the session outcome.
func (m *Model) Result() Result {
	return Result{State: m.state, Notices: m.notices, Name: m.name, Named: m.named, Err: m.err}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return shownMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case shownMsg:
		// Program startup is not part of the first round.
		if m.phase == phaseAnswer && m.state.Attempts == 0 {
			m.start = m.opts.Clock.Now()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, m.interrupt()
		case tea.KeyEsc:
			if m.phase == phaseAnswer {
				m.state = m.state.End(session.ReasonQuit)
				return m, m.finish()
			}
			return m, m.interrupt()
		case tea.KeyEnter:
			return m, m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.phase == phaseDone {
		return ""
	}
	var b strings.Builder
	switch m.phase {
	case phaseAnswer:
		fmt.Fprintf(&b, "%s %s = %s\n", m.styles.muted.Render(fmt.Sprintf("%2d.", m.state.Attempts+1)), m.styles.problem.Render(m.problem.String()), m.input.View())
		if m.last != "" {
			b.WriteString(m.last)
		}
	case phaseName:
		fmt.Fprintf(&b, "New high score: %s (rank %d)\n", m.styles.score.Render(fmt.Sprintf("%d", m.state.Score)), m.rank())
		fmt.Fprintf(&b, "Your name: %s", m.input.View())
	}
	content := b.String()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	limit := m.opts.Rules.MaxAttempts
	if limit <= 0 {
		limit = session.DefaultMaxAttempts
	}
	segments := []string{
		fmt.Sprintf("Score %d", m.state.Score),
		fmt.Sprintf("Combo ×%d", m.state.Combo),
		fmt.Sprintf("Best ×%d", m.state.MaxCombo),
		fmt.Sprintf("Round %d/%d", min(m.state.Attempts+1, limit), limit),
	}
	if m.phase == phaseAnswer {
		segments = append(segments, "q or Esc to quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) nextProblem() {
	m.problem = m.opts.Problems.Next()
	m.input.Reset()
	m.start = m.opts.Clock.Now()
}

func (m *Model) submit() tea.Cmd {
	switch m.phase {
	case phaseAnswer:
		return m.answer()
	case phaseName:
		m.name = m.input.Value()
		m.named = true
		m.phase = phaseDone
		return tea.Quit
	default:
		return nil
	}
}

func (m *Model) answer() tea.Cmd {
	end := m.opts.Clock.Now()
	round := scoring.Round{Problem: m.problem, Input: m.input.Value(), Start: m.start, End: end}
	next, notice, err := m.state.Advance(round, m.opts.Rules)
	if err != nil {
		m.err = fmt.Errorf("failed to score %s: %w", m.problem, err)
		m.phase = phaseDone
		return tea.Quit
	}
	m.state = next
	if notice.Verdict != scoring.VerdictQuit {
		m.notices = append(m.notices, notice)
		mark, message := NoticeText(notice)
		m.last = fmt.Sprintf("%s %s", m.styles.mark(mark), message)
		m.logger.Debug("round",
			"problem", m.problem.String(),
			"verdict", notice.Verdict,
			"ms", notice.Latency.Milliseconds(),
			"tm", notice.Multiplier.Time,
			"cm", notice.Multiplier.Complexity,
			"delta", notice.Delta,
		)
	}
	if m.state.Finished {
		return m.finish()
	}
	m.nextProblem()
	return nil
}

// finish moves to the name prompt when the score earns a leaderboard place.
func (m *Model) finish() tea.Cmd {
	if m.opts.AskName && m.opts.Board != nil && m.opts.Board.Qualifies(m.state.Score) {
		m.phase = phaseName
		m.input.Reset()
		m.input.Placeholder = "anonymous"
		return nil
	}
	m.phase = phaseDone
	return tea.Quit
}

func (m *Model) interrupt() tea.Cmd {
	if m.phase == phaseAnswer {
		m.state = m.state.End(session.ReasonInputClosed)
	}
	m.phase = phaseDone
	return tea.Quit
}

func (m *Model) rank() int {
	if m.opts.Board == nil {
		return 0
	}
	return m.opts.Board.Rank(m.state.Score)
}
