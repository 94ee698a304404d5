package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/tuimath/internal/model"
)

func TestPlotScores(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{{Score: 0}, {Score: 10}, {Score: 5}}
	if err := PlotScores(&buf, sessions, 80, 2); err != nil {
		t.Fatalf("plot scores: %v", err)
	}
	want := []string{
		"Scores by session",
		"10 │  █",
		"   │  ██",
		" 0 └────",
		"",
		"",
	}
	got := strings.Split(buf.String(), "\n")
	if len(got) != len(want) {
		t.Fatalf("unexpected line count %d:\n%s", len(got), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPlotScoresEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScores(&buf, nil, 0, 0); err != nil {
		t.Fatalf("plot scores: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestResampleSeriesAverages(t *testing.T) {
	got := resampleSeries([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected resample: %v", got)
	}
	if got := resampleSeries([]float64{1, 2}, 5); len(got) != 2 {
		t.Fatalf("short series must not be stretched: %v", got)
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80, 3); got != 80-3-2-1 {
		t.Fatalf("unexpected width %d", got)
	}
	if got := PlotWidthFor(0, 3); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12, 5); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
