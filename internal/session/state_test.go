package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/scoring"
)

var sevenPlusThree = arith.Problem{A: 7, B: 3, Op: arith.Add}

func timed(input string, elapsed time.Duration) scoring.Round {
	return scoring.Round{Problem: sevenPlusThree, Input: input, Start: 0, End: int64(elapsed)}
}

func TestAdvanceCorrectScenario(t *testing.T) {
	s := New()
	next, notice, err := s.Advance(timed("10\n", 100*time.Millisecond), Rules{})
	require.NoError(t, err)

	assert.Equal(t, 2, next.Combo)
	assert.Equal(t, 2, next.MaxCombo)
	assert.Equal(t, 200, next.Score)
	assert.Equal(t, []int64{100}, next.Latencies)
	assert.Equal(t, 200, notice.Score)
	assert.Equal(t, 1, notice.Attempt)

	// The prior snapshot is untouched.
	assert.Equal(t, 1, s.Combo)
	assert.Equal(t, 0, s.Score)
	assert.Empty(t, s.Latencies)
}

func TestAdvanceComboSequence(t *testing.T) {
	s := New()
	var combos []int
	for i := 0; i < 3; i++ {
		var err error
		s, _, err = s.Advance(timed("10", time.Second), Rules{})
		require.NoError(t, err)
		combos = append(combos, s.Combo)
	}
	assert.Equal(t, []int{2, 3, 4}, combos)

	s, _, err := s.Advance(timed("11", time.Second), Rules{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Combo)
	assert.Equal(t, 4, s.MaxCombo)
}

func TestAdvanceScoreFloor(t *testing.T) {
	s := New()
	for _, in := range []string{"0", "abc", "-3", "10", "1", "2", "x"} {
		var err error
		s, _, err = s.Advance(timed(in, 2*time.Second), Rules{MaxAttempts: 100})
		require.NoError(t, err)
		require.GreaterOrEqual(t, s.Score, 0)
		require.Equal(t, s.Correct+s.Incorrect, s.Attempts)
	}
	assert.Equal(t, 7, s.Attempts)
	assert.Equal(t, 1, s.Correct)
}

func TestAdvanceAttemptLimit(t *testing.T) {
	s := New()
	for i := 0; i < DefaultMaxAttempts; i++ {
		require.False(t, s.Finished)
		var err error
		s, _, err = s.Advance(timed("nope", time.Second), Rules{})
		require.NoError(t, err)
	}
	assert.True(t, s.Finished)
	assert.Equal(t, ReasonAttemptLimit, s.Reason)
	assert.Equal(t, DefaultMaxAttempts, s.Attempts)

	_, _, err := s.Advance(timed("10", time.Second), Rules{})
	assert.ErrorIs(t, err, ErrFinished)
}

func TestAdvanceQuitIsUnscored(t *testing.T) {
	s, _, err := New().Advance(timed("10", time.Second), Rules{})
	require.NoError(t, err)
	q, notice, err := s.Advance(timed("quit\n", time.Second), Rules{})
	require.NoError(t, err)

	assert.True(t, q.Finished)
	assert.Equal(t, ReasonQuit, q.Reason)
	assert.Equal(t, s.Attempts, q.Attempts)
	assert.Equal(t, s.Score, q.Score)
	assert.Len(t, q.Latencies, 1)
	assert.Equal(t, scoring.VerdictQuit, notice.Verdict)
}

func TestAdvanceSurfacesConfigurationErrors(t *testing.T) {
	r := scoring.Round{Problem: arith.Problem{A: 1, B: 1, Op: arith.Op(7)}, Input: "2"}
	_, _, err := New().Advance(r, Rules{})
	assert.ErrorIs(t, err, arith.ErrUnknownOperator)
}

func TestEnd(t *testing.T) {
	s := New().End(ReasonInputClosed)
	assert.True(t, s.Finished)
	assert.Equal(t, ReasonInputClosed, s.Reason)
	assert.Equal(t, ReasonInputClosed, s.End(ReasonQuit).Reason)
}

type fixedProblems struct{ p arith.Problem }

func (f fixedProblems) Next() arith.Problem { return f.p }

type stepClock struct {
	now  int64
	step int64
}

func (c *stepClock) Now() int64 {
	c.now += c.step
	return c.now
}

type recordingDisplay struct {
	prompts []int
	notices []Notice
}

func (d *recordingDisplay) Prompt(attempt int, _ arith.Problem) error {
	d.prompts = append(d.prompts, attempt)
	return nil
}

func (d *recordingDisplay) Notice(n Notice) error {
	d.notices = append(d.notices, n)
	return nil
}

func newTestRunner(input string, display *recordingDisplay) *Runner {
	return &Runner{
		Input:    NewLineReader(strings.NewReader(input)),
		Clock:    &stepClock{step: int64(50 * time.Millisecond)},
		Problems: fixedProblems{p: sevenPlusThree},
		Display:  display,
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	display := &recordingDisplay{}
	state, notices, err := newTestRunner("10\n9\nq\n10\n", display).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonQuit, state.Reason)
	assert.Equal(t, 2, state.Attempts)
	assert.Len(t, notices, 2)
	assert.Equal(t, []int{1, 2, 3}, display.prompts)
	assert.Equal(t, []int64{50, 50}, state.Latencies)
}

func TestRunStopsAtAttemptLimit(t *testing.T) {
	display := &recordingDisplay{}
	input := strings.Repeat("10\n", 15)
	state, notices, err := newTestRunner(input, display).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonAttemptLimit, state.Reason)
	assert.Equal(t, DefaultMaxAttempts, state.Attempts)
	assert.Len(t, notices, DefaultMaxAttempts)
	assert.Equal(t, DefaultMaxAttempts+1, state.MaxCombo)
}

func TestRunEndsOnEOF(t *testing.T) {
	display := &recordingDisplay{}
	state, notices, err := newTestRunner("10\n12", display).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonInputClosed, state.Reason)
	assert.Equal(t, 2, state.Attempts)
	assert.Len(t, notices, 2)
	assert.Equal(t, 1, state.Incorrect)
}

type failingDisplay struct{ recordingDisplay }

func (d *failingDisplay) Notice(Notice) error { return io.ErrClosedPipe }

func TestRunAbortsOnDisplayError(t *testing.T) {
	r := newTestRunner("10\n", nil)
	r.Display = &failingDisplay{}
	_, _, err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
}
