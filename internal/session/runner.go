package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/scoring"
)

// InputSource yields one line per call and blocks until it is available.
type InputSource interface {
	ReadLine() (string, error)
}

// Clock returns a monotonically increasing nanosecond timestamp.
type Clock interface {
	Now() int64
}

// ProblemSource draws the next problem.
type ProblemSource interface {
	Next() arith.Problem
}

// Display presents problems and round notices.
type Display interface {
	Prompt(attempt int, p arith.Problem) error
	Notice(n Notice) error
}

// LineReader reads newline-terminated answers.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r for line-based input.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line including its terminator. A final line
// without a terminator is returned before io.EOF.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

// MonotonicClock measures nanoseconds since it was created.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() MonotonicClock {
	return MonotonicClock{start: time.Now()}
}

// Now implements Clock.
func (c MonotonicClock) Now() int64 {
	return time.Since(c.start).Nanoseconds()
}

// Runner drives a session from a blocking input source.
type Runner struct {
	Input    InputSource
	Clock    Clock
	Problems ProblemSource
	Display  Display
	Rules    Rules
	Logger   *log.Logger
}

// Run plays rounds until the session finishes. It returns the final state and
// the notices of every processed round. Input errors end the session; scoring
// and display errors abort it.
func (r *Runner) Run(ctx context.Context) (State, []Notice, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	state := New()
	var notices []Notice
	for !state.Finished {
		if err := ctx.Err(); err != nil {
			return state.End(ReasonInputClosed), notices, nil
		}
		problem := r.Problems.Next()
		if err := r.Display.Prompt(state.Attempts+1, problem); err != nil {
			return state, notices, fmt.Errorf("failed to show problem: %w", err)
		}

		start := r.Clock.Now()
		line, err := r.Input.ReadLine()
		end := r.Clock.Now()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("input read failed", "err", err)
			}
			state = state.End(ReasonInputClosed)
			break
		}

		round := scoring.Round{Problem: problem, Input: line, Start: start, End: end}
		next, notice, err := state.Advance(round, r.Rules)
		if err != nil {
			return state, notices, fmt.Errorf("failed to score %s: %w", problem, err)
		}
		state = next
		if notice.Verdict == scoring.VerdictQuit {
			break
		}
		notices = append(notices, notice)
		logger.Debug("round",
			"problem", problem.String(),
			"verdict", notice.Verdict,
			"ms", notice.Latency.Milliseconds(),
			"tm", notice.Multiplier.Time,
			"cm", notice.Multiplier.Complexity,
			"delta", notice.Delta,
		)
		if err := r.Display.Notice(notice); err != nil {
			return state, notices, fmt.Errorf("failed to show result: %w", err)
		}
	}
	logger.Debug("session finished", "reason", state.Reason, "score", state.Score)
	return state, notices, nil
}
