package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/config"
	"github.com/verte-zerg/tuimath/internal/generator"
	"github.com/verte-zerg/tuimath/internal/level"
	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/scoring"
	"github.com/verte-zerg/tuimath/internal/session"
	"github.com/verte-zerg/tuimath/internal/stats"
	"github.com/verte-zerg/tuimath/internal/store"
	"github.com/verte-zerg/tuimath/internal/tui"
)

// drill is everything a session needs besides its input and display.
type drill struct {
	level   string
	gen     *generator.Generator
	rules   session.Rules
	board   *stats.Leaderboard
	scores  *store.ScoreFile
	history *store.Store
	logger  *log.Logger
}

// played is the outcome of one session, whichever front end ran it.
type played struct {
	state     session.State
	notices   []session.Notice
	name      string
	named     bool
	startedAt time.Time
	endedAt   time.Time
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "min", &practiceMin, fileCfg.Practice.Min)
	applyIntConfig(cmd, "max", &practiceMax, fileCfg.Practice.Max)
	applyStringConfig(cmd, "operators", &practiceOperators, fileCfg.Practice.Operators)
	applyIntConfig(cmd, "rounds", &practiceRounds, fileCfg.Practice.Rounds)
	applyStringConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyStringConfig(cmd, "player", &practicePlayer, fileCfg.Practice.Player)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	resolvePaths(cmd, fileCfg)

	cfg := model.Config{
		Min:        practiceMin,
		Max:        practiceMax,
		Operators:  practiceOperators,
		Rounds:     practiceRounds,
		Level:      practiceLevel,
		Player:     practicePlayer,
		Seed:       practiceSeed,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
		ScoresPath: scoresPath,
		DBPath:     dbPath,
		LevelsDir:  levelsDir,
		Plain:      practicePlain,
		Timeout:    practiceTimeout,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger := newLogger()
	interactive := !cfg.Plain && isInteractive()
	if interactive && verbose {
		// Keep debug output off the alternate screen.
		closeLog, err := logToFile(logger, filepath.Join(filepath.Dir(cfg.DBPath), "debug.log"))
		if err != nil {
			return err
		}
		defer closeLog()
	}

	d, err := prepareDrill(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	if d.history != nil {
		defer func() {
			if cerr := d.history.Close(); cerr != nil {
				logger.Warn("failed to close db", "err", cerr)
			}
		}()
	}

	var res played
	if interactive {
		res, err = playTUI(d, cfg)
	} else {
		res, err = playLines(cmd.Context(), d, cfg, os.Stdin, cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	return finishDrill(cmd.Context(), d, cfg, res, cmd.OutOrStdout())
}

func prepareDrill(ctx context.Context, cfg model.Config, logger *log.Logger) (*drill, error) {
	a, b, ops, timeout, levelName, err := problemSetup(cfg, logger)
	if err != nil {
		return nil, err
	}
	gen, err := generator.New(a, b, ops, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("invalid problem setup: %w", err)
	}

	records, err := store.NewScoreFile(cfg.ScoresPath).Load()
	if err != nil {
		return nil, err
	}

	d := &drill{
		level: levelName,
		gen:   gen,
		rules: session.Rules{
			MaxAttempts: cfg.Rounds,
			Evaluator:   scoring.Evaluator{Timeout: timeout},
		},
		board:  stats.NewLeaderboard(records, stats.LeaderboardSize),
		scores: store.NewScoreFile(cfg.ScoresPath),
		logger: logger,
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("session history disabled", "err", err)
		return d, nil
	}
	d.history = st

	if cfg.FocusWeak {
		aggs, err := st.GetWeakOps(ctx, cfg.WeakWindow, levelName)
		switch {
		case err != nil:
			logger.Warn("failed to load weak operators", "err", err)
		case len(aggs) == 0:
			logger.Warn("no stats available for weak-operator focus yet; using uniform operators")
		default:
			weak := stats.SelectWeakOps(aggs, cfg.WeakTop)
			gen.SetWeakOps(weak, cfg.WeakFactor)
			logger.Debug("focusing weak operators", "count", len(weak))
		}
	}
	return d, nil
}

// problemSetup resolves operand ranges, operators and the answer timeout from
// a level file, or from the practice flags when no level is selected.
func problemSetup(cfg model.Config, logger *log.Logger) (a, b generator.Range, ops []arith.Op, timeout time.Duration, levelName string, err error) {
	if cfg.Level == "" {
		var dropped []string
		ops, dropped = arith.ParseOps(arith.SplitSymbols(cfg.Operators))
		warnDropped(logger, dropped)
		if len(ops) == 0 {
			return a, b, nil, 0, "", fmt.Errorf("--operators %q has no usable operators", cfg.Operators)
		}
		r := generator.Range{Min: cfg.Min, Max: cfg.Max}
		return r, r, ops, cfg.Timeout, "", nil
	}

	lvl, err := level.NewLoader(cfg.LevelsDir).Find(cfg.Level)
	if err != nil {
		return a, b, nil, 0, "", err
	}
	ops, dropped, err := lvl.Ops()
	warnDropped(logger, dropped)
	if err != nil {
		return a, b, nil, 0, "", err
	}
	a, b, err = lvl.Ranges()
	if err != nil {
		return a, b, nil, 0, "", err
	}
	logger.Debug("loaded level", "name", lvl.Name, "path", lvl.FilePath)
	return a, b, ops, lvl.TimeoutDuration(), lvl.Name, nil
}

func warnDropped(logger *log.Logger, dropped []string) {
	for _, sym := range dropped {
		logger.Warn("ignoring unknown operator", "symbol", sym)
	}
}

func playTUI(d *drill, cfg model.Config) (played, error) {
	m := tui.NewModel(tui.Options{
		Problems: d.gen,
		Clock:    session.NewMonotonicClock(),
		Rules:    d.rules,
		Board:    d.board,
		AskName:  cfg.Player == "",
		Logger:   d.logger,
	})
	startedAt := time.Now()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return played{}, fmt.Errorf("failed to run TUI: %w", err)
	}
	res := m.Result()
	if res.Err != nil {
		return played{}, res.Err
	}
	return played{
		state:     res.State,
		notices:   res.Notices,
		name:      res.Name,
		named:     res.Named,
		startedAt: startedAt,
		endedAt:   time.Now(),
	}, nil
}

func playLines(ctx context.Context, d *drill, cfg model.Config, in io.Reader, out io.Writer) (played, error) {
	display := tui.NewDisplay(out)
	reader := session.NewLineReader(in)
	runner := &session.Runner{
		Input:    reader,
		Clock:    session.NewMonotonicClock(),
		Problems: d.gen,
		Display:  display,
		Rules:    d.rules,
		Logger:   d.logger,
	}
	startedAt := time.Now()
	state, notices, err := runner.Run(ctx)
	if err != nil {
		return played{}, err
	}
	res := played{state: state, notices: notices, startedAt: startedAt, endedAt: time.Now()}

	if cfg.Player == "" && d.board.Qualifies(state.Score) {
		if err := display.Info("New high score: %d (rank %d).", state.Score, d.board.Rank(state.Score)); err != nil {
			return res, err
		}
		if _, err := fmt.Fprint(out, "Your name: "); err != nil {
			return res, err
		}
		line, err := reader.ReadLine()
		if err != nil {
			d.logger.Debug("name prompt skipped", "err", err)
			return res, nil
		}
		res.name = scoring.TrimAnswer(line)
		res.named = true
	}
	return res, nil
}

// finishDrill prints the summary, applies the leaderboard policy and records
// the session history.
func finishDrill(ctx context.Context, d *drill, cfg model.Config, res played, out io.Writer) error {
	summary := stats.Summarize(res.state)
	if err := stats.RenderSessionSummary(out, summary); err != nil {
		return err
	}

	name, named := res.name, res.named
	if cfg.Player != "" {
		name, named = cfg.Player, true
	}
	if named && d.board.Insert(model.ScoreRecord{Name: store.SanitizeName(name), Points: res.state.Score}) {
		if err := d.scores.Save(d.board.Records()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		if err := stats.RenderLeaderboard(out, d.board.Records()); err != nil {
			return err
		}
	}

	if d.history == nil || res.state.Attempts == 0 {
		return nil
	}
	sessionStats := model.SessionStats{
		Key:         uuid.New().String(),
		StartedAt:   res.startedAt,
		EndedAt:     res.endedAt,
		Level:       d.level,
		Score:       summary.Score,
		Correct:     summary.Correct,
		Incorrect:   summary.Incorrect,
		MaxCombo:    summary.MaxCombo,
		MedianMs:    summary.MedianMs,
		EndedReason: summary.Reason.String(),
	}
	if _, err := d.history.InsertSession(ctx, sessionStats, roundStats(res.notices)); err != nil {
		d.logger.Warn("failed to save session", "err", err)
	}
	return nil
}

func roundStats(notices []session.Notice) []model.RoundStats {
	rounds := make([]model.RoundStats, 0, len(notices))
	for _, n := range notices {
		rounds = append(rounds, model.RoundStats{
			A:         n.Problem.A,
			B:         n.Problem.B,
			Op:        n.Problem.Op.Symbol(),
			Answer:    n.Answer,
			Correct:   n.Verdict == scoring.VerdictCorrect,
			Delta:     n.Delta,
			LatencyMs: n.Latency.Milliseconds(),
		})
	}
	return rounds
}

func logToFile(logger *log.Logger, path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Level == "" {
		if cfg.Min < 1 {
			return fmt.Errorf("--min must be >= 1")
		}
		if cfg.Max < cfg.Min {
			return fmt.Errorf("--max must be >= --min")
		}
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if cfg.Rounds <= 0 {
		return fmt.Errorf("--rounds must be > 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
