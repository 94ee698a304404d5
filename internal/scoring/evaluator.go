package scoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuimath/internal/arith"
)

// BasePoints scales every delta. A wrong answer costs exactly BasePoints.
const BasePoints = 1

// Round is one presented problem with the raw answer and the monotonic
// nanosecond stamps taken around the blocking read.
type Round struct {
	Problem arith.Problem
	Input   string
	Start   int64
	End     int64
}

// Elapsed returns the think time of the round.
func (r Round) Elapsed() time.Duration {
	if r.End < r.Start {
		return 0
	}
	return time.Duration(r.End - r.Start)
}

// Verdict classifies an evaluated round.
type Verdict int

const (
	VerdictCorrect Verdict = iota + 1
	VerdictIncorrect
	VerdictQuit
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	case VerdictQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Outcome is the result of evaluating one round.
type Outcome struct {
	Verdict    Verdict
	Answer     string
	Given      int
	NotANumber bool
	Expected   int
	Multiplier Multiplier
	Delta      int
	Combo      int
}

// IsQuit reports whether the trimmed answer is the quit sentinel.
func IsQuit(answer string) bool {
	return answer == "q" || answer == "quit"
}

// TrimAnswer strips trailing line endings from raw terminal input.
func TrimAnswer(raw string) string {
	return strings.TrimRight(raw, "\r\n")
}

// Evaluator scores rounds. A zero Timeout leaves the time multiplier as is.
type Evaluator struct {
	Timeout time.Duration
}

// Evaluate decides correctness and computes the point delta for a round
// given the combo before the round. Errors are configuration defects.
func (e Evaluator) Evaluate(r Round, combo int) (Outcome, error) {
	answer := TrimAnswer(r.Input)
	if IsQuit(answer) {
		return Outcome{Verdict: VerdictQuit, Answer: answer, Combo: combo}, nil
	}

	expected, err := r.Problem.Answer()
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Answer: answer, Expected: expected}

	given, perr := strconv.Atoi(answer)
	if perr != nil {
		out.NotANumber = true
	} else {
		out.Given = given
	}

	if perr != nil || given != expected {
		out.Verdict = VerdictIncorrect
		out.Combo = 1
		out.Delta = -BasePoints
		return out, nil
	}

	mult, err := fullMultiplier(r, e.Timeout)
	if err != nil {
		return Outcome{}, err
	}
	out.Verdict = VerdictCorrect
	out.Combo = combo + 1
	out.Multiplier = mult
	out.Delta = BasePoints * mult.Points * out.Combo
	return out, nil
}
