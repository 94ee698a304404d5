// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuimath/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSessionSummary prints the end-of-session report.
func RenderSessionSummary(w io.Writer, s Summary) error {
	lines := []string{
		"====",
		fmt.Sprintf("Your score: %d", s.Score),
		fmt.Sprintf("Correct answers: %d (%.0f %%), incorrect: %d, total: %d.", s.Correct, s.Accuracy, s.Incorrect, s.Attempts),
		fmt.Sprintf("Median time: %.2f s.", s.MedianMs/1000),
		fmt.Sprintf("Max combo: %d", s.MaxCombo),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints an overview of stored sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalScore, totalAcc, totalMedian float64
	best := sessions[0].Score
	bestCombo := 0
	for _, s := range sessions {
		totalScore += float64(s.Score)
		totalAcc += AccuracyPct(s.Correct, s.Incorrect)
		totalMedian += s.MedianMs
		best = max(best, s.Score)
		bestCombo = max(bestCombo, s.MaxCombo)
	}
	count := float64(len(sessions))
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = float64(s.Score)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Best score: %d", best),
		fmt.Sprintf("Avg score: %.1f", totalScore/count),
		fmt.Sprintf("Avg accuracy: %.2f%%", totalAcc/count),
		fmt.Sprintf("Avg median time: %.2f s", totalMedian/count/1000),
		fmt.Sprintf("Best combo: %d", bestCombo),
		fmt.Sprintf("Scores: [%s]", Sparkline(scores)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderScoreCurve prints a moving-average sparkline of session scores and accuracy.
func RenderScoreCurve(w io.Writer, sessions []model.SessionAggregate, window int) error {
	if len(sessions) < 2 {
		return nil
	}
	scores := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = float64(s.Score)
		accs[i] = AccuracyPct(s.Correct, s.Incorrect)
	}
	lines := []string{
		fmt.Sprintf("Learning Curves (window %d)", window),
		fmt.Sprintf("Score    [%s]", Sparkline(MovingAverage(scores, window))),
		fmt.Sprintf("Accuracy [%s]", Sparkline(MovingAverage(accs, window))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// SessionColumns are the headers of the session table.
var SessionColumns = []string{"Date", "Level", "Score", "Accuracy", "Median (s)", "Combo"}

// SessionRows formats sessions as table rows, most recent last.
func SessionRows(sessions []model.SessionAggregate) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Level,
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%.0f%%", AccuracyPct(s.Correct, s.Incorrect)),
			fmt.Sprintf("%.2f", s.MedianMs/1000),
			fmt.Sprintf("%d", s.MaxCombo),
		})
	}
	return rows
}

// RenderSessionTable prints the given sessions, most recent last.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Sessions"); err != nil {
		return err
	}
	return writeTable(w, SessionColumns, SessionRows(sessions), map[int]bool{2: true, 3: true, 4: true, 5: true})
}

// OpColumns are the headers of the per-operator table.
var OpColumns = []string{"Op", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}

// OpRows formats per-operator aggregates as table rows, weakest first.
func OpRows(aggs []model.OpAggregate) [][]string {
	sorted := make([]model.OpAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai := AccuracyPct(sorted[i].Correct, sorted[i].Incorrect)
		aj := AccuracyPct(sorted[j].Correct, sorted[j].Incorrect)
		if ai == aj {
			return sorted[i].Op < sorted[j].Op
		}
		return ai < aj
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, []string{
			agg.Op,
			fmt.Sprintf("%.2f%%", AccuracyPct(agg.Correct, agg.Incorrect)),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	return rows
}

// RenderOpTable prints per-operator aggregates, weakest first.
func RenderOpTable(w io.Writer, aggs []model.OpAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No operator stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Operator (Windowed)"); err != nil {
		return err
	}
	return writeTable(w, OpColumns, OpRows(aggs), map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderLeaderboard prints the ranked score table.
func RenderLeaderboard(w io.Writer, records []model.ScoreRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No scores recorded yet.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), r.Name, fmt.Sprintf("%d", r.Points)})
	}
	return writeTable(w, []string{"Rank", "Name", "Score"}, rows, map[int]bool{0: true, 2: true})
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
