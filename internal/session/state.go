// Package session threads timed rounds through the scoring engine.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/scoring"
)

// DefaultMaxAttempts is the number of scored rounds in a session.
const DefaultMaxAttempts = 10

// ErrFinished is returned when a round is fed to a finished session.
var ErrFinished = errors.New("session is finished")

// Reason records why a session finished.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonQuit
	ReasonAttemptLimit
	ReasonInputClosed
)

func (r Reason) String() string {
	switch r {
	case ReasonQuit:
		return "quit"
	case ReasonAttemptLimit:
		return "attempt limit"
	case ReasonInputClosed:
		return "input closed"
	default:
		return "active"
	}
}

// Rules configure a session.
type Rules struct {
	MaxAttempts int
	Evaluator   scoring.Evaluator
}

func (r Rules) maxAttempts() int {
	if r.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return r.MaxAttempts
}

// State is an immutable snapshot of a session. Advance returns a new value
// and never touches the receiver's latency slice.
type State struct {
	// Latencies holds one response time in milliseconds per scored round.
	Latencies []int64
	Correct   int
	Incorrect int
	Attempts  int
	Combo     int
	MaxCombo  int
	Score     int
	Finished  bool
	Reason    Reason
}

// New returns the initial state. The combo starts at 1 so the first correct
// answer scores with combo 2.
func New() State {
	return State{Combo: 1}
}

// Notice is the display contract for one processed round.
type Notice struct {
	scoring.Outcome
	Problem arith.Problem
	Attempt int
	Latency time.Duration
	// Score is the running score after the round.
	Score int
}

// Advance processes one round. A quit answer finishes the session without
// scoring or counting the round.
func (s State) Advance(r scoring.Round, rules Rules) (State, Notice, error) {
	if s.Finished {
		return s, Notice{}, ErrFinished
	}
	out, err := rules.Evaluator.Evaluate(r, s.Combo)
	if err != nil {
		return s, Notice{}, err
	}

	next := s
	next.Latencies = slices.Clone(s.Latencies)
	notice := Notice{Outcome: out, Problem: r.Problem, Latency: r.Elapsed()}

	if out.Verdict == scoring.VerdictQuit {
		next.Finished = true
		next.Reason = ReasonQuit
		notice.Attempt = s.Attempts
		notice.Score = s.Score
		return next, notice, nil
	}

	next.Latencies = append(next.Latencies, r.Elapsed().Milliseconds())
	next.Attempts++
	next.Combo = out.Combo
	switch out.Verdict {
	case scoring.VerdictCorrect:
		next.Correct++
		if next.Combo > next.MaxCombo {
			next.MaxCombo = next.Combo
		}
	default:
		next.Incorrect++
	}
	next.Score += out.Delta
	if next.Score < 0 {
		next.Score = 0
	}
	if next.Attempts >= rules.maxAttempts() {
		next.Finished = true
		next.Reason = ReasonAttemptLimit
	}

	notice.Attempt = next.Attempts
	notice.Score = next.Score
	return next, notice, nil
}

// End finishes an active session without scoring, e.g. when input is exhausted.
func (s State) End(reason Reason) State {
	if s.Finished {
		return s
	}
	next := s
	next.Latencies = slices.Clone(s.Latencies)
	next.Finished = true
	next.Reason = reason
	return next
}
