package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/tuimath/internal/model"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisSeparator       = " │"
	axisCorner          = " └"
	terminalWidthBackup = 80
)

// PlotScores draws a column chart of session scores, one column per session.
// When there are more sessions than columns, neighbouring sessions are
// averaged. A width of 0 fits the terminal.
func PlotScores(w io.Writer, sessions []model.SessionAggregate, width, height int) error {
	if len(sessions) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	values := make([]float64, len(sessions))
	for i, s := range sessions {
		values[i] = float64(s.Score)
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	topLabel := PeakLabel(sessions)
	labelWidth := len(topLabel)
	if width <= 0 {
		width = PlotWidthFor(terminalWidth(), labelWidth)
	}
	if len(values) > width {
		values = resampleSeries(values, width)
	}
	if peak <= 0 {
		peak = 1
	}

	lines := make([]string, 0, height+2)
	lines = append(lines, "Scores by session")
	for row := height; row >= 1; row-- {
		label := ""
		if row == height {
			label = topLabel
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s ", labelWidth, label, axisSeparator)
		for _, v := range values {
			level := v / peak * float64(height)
			switch {
			case level >= float64(row):
				b.WriteRune('█')
			case level >= float64(row)-0.5:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	lines = append(lines, fmt.Sprintf("%*s%s%s", labelWidth, "0", axisCorner, strings.Repeat("─", len(values)+1)))
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PeakLabel is the axis label of the highest session score.
func PeakLabel(sessions []model.SessionAggregate) string {
	peak := 0
	for _, s := range sessions {
		peak = max(peak, s.Score)
	}
	return fmt.Sprintf("%d", peak)
}

// PlotWidthFor returns the number of plot columns that fit next to a label
// of labelWidth cells.
func PlotWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - labelWidth - len([]rune(axisSeparator)) - 1
	return max(plotWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// resampleSeries averages values down to width buckets.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
