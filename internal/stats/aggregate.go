package stats

import (
	"slices"

	"github.com/verte-zerg/tuimath/internal/session"
)

// Median returns the median of latencies in milliseconds. Even-length input
// averages the two middle values; empty input yields 0.
func Median(latencies []int64) float64 {
	if len(latencies) == 0 {
		return 0
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// AccuracyPct returns 100*correct/(correct+incorrect), or 0 without attempts.
func AccuracyPct(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

// Summary is the end-of-session report.
type Summary struct {
	Score     int
	Correct   int
	Incorrect int
	Attempts  int
	Accuracy  float64
	MedianMs  float64
	MaxCombo  int
	Reason    session.Reason
}

// Summarize consumes the final session state.
func Summarize(s session.State) Summary {
	return Summary{
		Score:     s.Score,
		Correct:   s.Correct,
		Incorrect: s.Incorrect,
		Attempts:  s.Attempts,
		Accuracy:  AccuracyPct(s.Correct, s.Incorrect),
		MedianMs:  Median(s.Latencies),
		MaxCombo:  s.MaxCombo,
		Reason:    s.Reason,
	}
}
