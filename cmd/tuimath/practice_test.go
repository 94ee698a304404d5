package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/generator"
	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
	"github.com/verte-zerg/tuimath/internal/stats"
	"github.com/verte-zerg/tuimath/internal/store"
)

func newTestDrill(t *testing.T, records []model.ScoreRecord) *drill {
	t.Helper()
	dir := t.TempDir()
	one := generator.Range{Min: 1, Max: 1}
	gen, err := generator.New(one, one, []arith.Op{arith.Add}, 1)
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(dir, "tuimath.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return &drill{
		level:   "",
		gen:     gen,
		rules:   session.Rules{MaxAttempts: 10},
		board:   stats.NewLeaderboard(records, stats.LeaderboardSize),
		scores:  store.NewScoreFile(filepath.Join(dir, "scores.txt")),
		history: st,
		logger:  log.New(io.Discard),
	}
}

func TestPlayLinesAndFinish(t *testing.T) {
	d := newTestDrill(t, nil)
	ctx := context.Background()
	var out bytes.Buffer

	res, err := playLines(ctx, d, model.Config{}, strings.NewReader("2\n3\nq\nada\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, session.ReasonQuit, res.state.Reason)
	assert.Equal(t, 2, res.state.Attempts)
	assert.Equal(t, 59, res.state.Score)
	assert.True(t, res.named)
	assert.Equal(t, "ada", res.name)
	require.Len(t, res.notices, 2)

	require.NoError(t, finishDrill(ctx, d, model.Config{}, res, &out))
	text := out.String()
	assert.Contains(t, text, "Your score: 59")
	assert.Contains(t, text, "Correct answers: 1 (50 %), incorrect: 1, total: 2.")
	assert.Contains(t, text, "New high score: 59 (rank 1).\nYour name: ")

	saved, err := d.scores.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.ScoreRecord{{Name: "ada", Points: 59}}, saved)

	sessions, err := d.history.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 59, sessions[0].Score)
	assert.Equal(t, 1, sessions[0].Correct)
}

func TestFullBoardSkipsNamePrompt(t *testing.T) {
	records := make([]model.ScoreRecord, 0, stats.LeaderboardSize)
	for i := 0; i < stats.LeaderboardSize; i++ {
		records = append(records, model.ScoreRecord{Name: "pro", Points: 1000})
	}
	d := newTestDrill(t, records)
	ctx := context.Background()
	var out bytes.Buffer

	res, err := playLines(ctx, d, model.Config{}, strings.NewReader("3\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, session.ReasonInputClosed, res.state.Reason)
	assert.False(t, res.named)
	assert.NotContains(t, out.String(), "Your name")

	require.NoError(t, finishDrill(ctx, d, model.Config{}, res, &out))
	saved, err := d.scores.Load()
	require.NoError(t, err)
	assert.Empty(t, saved, "score file must not be written when the table is unchanged")
}

func TestPresetPlayerIsRecorded(t *testing.T) {
	d := newTestDrill(t, nil)
	ctx := context.Background()
	var out bytes.Buffer
	cfg := model.Config{Player: "bob\n"}

	res, err := playLines(ctx, d, cfg, strings.NewReader("2\n"), &out)
	require.NoError(t, err)
	assert.False(t, res.named)

	require.NoError(t, finishDrill(ctx, d, cfg, res, &out))
	saved, err := d.scores.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.ScoreRecord{{Name: "bob", Points: 60}}, saved)
}

func TestRoundStats(t *testing.T) {
	d := newTestDrill(t, nil)
	var out bytes.Buffer
	res, err := playLines(context.Background(), d, model.Config{Player: "x"}, strings.NewReader("2\nnope\n"), &out)
	require.NoError(t, err)

	rounds := roundStats(res.notices)
	require.Len(t, rounds, 2)
	assert.Equal(t, model.RoundStats{A: 1, B: 1, Op: "+", Answer: "2", Correct: true, Delta: 60, LatencyMs: rounds[0].LatencyMs}, rounds[0])
	assert.False(t, rounds[1].Correct)
	assert.Equal(t, "nope", rounds[1].Answer)
}

func TestProblemSetupFromFlags(t *testing.T) {
	logger := log.New(io.Discard)
	a, b, ops, _, name, err := problemSetup(model.Config{Min: 2, Max: 9, Operators: "+?*"}, logger)
	require.NoError(t, err)
	assert.Equal(t, generator.Range{Min: 2, Max: 9}, a)
	assert.Equal(t, a, b)
	assert.Equal(t, []arith.Op{arith.Add, arith.Mul}, ops)
	assert.Empty(t, name)

	_, _, _, _, _, err = problemSetup(model.Config{Min: 1, Max: 9, Operators: "?%"}, logger)
	assert.Error(t, err)
}

func TestPrepareDrillRejectsOverflowingMax(t *testing.T) {
	dir := t.TempDir()
	cfg := model.Config{
		Min:        1,
		Max:        10_000_000_000,
		Operators:  "*",
		Rounds:     10,
		ScoresPath: filepath.Join(dir, "scores.txt"),
		DBPath:     filepath.Join(dir, "tuimath.db"),
	}
	_, err := prepareDrill(context.Background(), cfg, log.New(io.Discard))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(model.Config{Min: 1, Max: 9, Rounds: 10}))
	assert.Error(t, validateConfig(model.Config{Min: 0, Max: 9, Rounds: 10}))
	assert.Error(t, validateConfig(model.Config{Min: 5, Max: 4, Rounds: 10}))
	assert.Error(t, validateConfig(model.Config{Min: 1, Max: 9, Rounds: 0}))
	assert.NoError(t, validateConfig(model.Config{Level: "easy", Rounds: 3}))
}
