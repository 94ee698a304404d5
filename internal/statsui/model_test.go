package statsui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
)

func sampleReport() stats.Report {
	return stats.Report{
		Sessions: []model.SessionAggregate{
			{SessionID: 1, EndedAt: time.Unix(0, 0), Level: "easy", Score: 40, Correct: 8, Incorrect: 2, MaxCombo: 5, MedianMs: 1500},
			{SessionID: 2, EndedAt: time.Unix(60, 0), Level: "easy", Score: 90, Correct: 10, Incorrect: 0, MaxCombo: 11, MedianMs: 900},
		},
		OpAggsAll: []model.OpAggregate{
			{Op: "+", Correct: 12, Incorrect: 1, LatencySumMs: 9000, LatencyCount: 13},
			{Op: "/", Correct: 6, Incorrect: 1, LatencySumMs: 14000, LatencyCount: 7},
		},
	}
}

func TestViewRendersTabs(t *testing.T) {
	m := NewModel(sampleReport(), model.StatsConfig{CurveWindow: 2})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.View()
	for _, want := range []string{"Overview", "Sessions", "Operators", "Best score: 90", "Scores by session"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestMoveTabWraps(t *testing.T) {
	m := NewModel(sampleReport(), model.StatsConfig{CurveWindow: 2})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Median (s)") {
		t.Fatalf("expected session table:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "Avg Latency (ms)") {
		t.Fatalf("expected operator table:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabOperators {
		t.Fatalf("expected wrap to operators, got %d", m.activeTab)
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m := NewModel(sampleReport(), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.CurveWindow != 2 {
		t.Fatalf("curve window should stop at session count, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("curve window should stop at 1, got %d", m.cfg.CurveWindow)
	}
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(stats.Report{}, model.StatsConfig{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if m.View() != "" {
		t.Fatalf("expected empty view before size is known")
	}
}
