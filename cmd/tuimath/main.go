// Package main provides the CLI entrypoint for tuimath.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuimath/internal/config"
	"github.com/verte-zerg/tuimath/internal/level"
	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
	"github.com/verte-zerg/tuimath/internal/statsui"
	"github.com/verte-zerg/tuimath/internal/store"
)

const (
	defaultMin         = 1
	defaultMax         = 99
	defaultOperators   = "+-*/"
	defaultRounds      = 10
	defaultWeakTop     = 2
	defaultWeakFactor  = 1.5
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
)

var (
	practiceMin        int
	practiceMax        int
	practiceOperators  string
	practiceRounds     int
	practiceLevel      string
	practicePlayer     string
	practiceSeed       int64
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practicePlain      bool
	practiceTimeout    time.Duration

	verbose    bool
	scoresPath string
	dbPath     string
	levelsDir  string

	statsLevel       string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuimath",
		Short:         "Timed arithmetic drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVar(&practiceMin, "min", defaultMin, "smallest operand")
	rootCmd.Flags().IntVar(&practiceMax, "max", defaultMax, "largest operand")
	rootCmd.Flags().StringVar(&practiceOperators, "operators", defaultOperators, "operator set, e.g. \"+-\" or \"*,/\"")
	rootCmd.Flags().IntVar(&practiceRounds, "rounds", defaultRounds, "scored rounds per session")
	rootCmd.Flags().StringVar(&practiceLevel, "level", "", "level name or file (overrides operators and operand range)")
	rootCmd.Flags().StringVar(&practicePlayer, "player", "", "leaderboard name (skips the name prompt)")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed (0 picks one from the clock)")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak operators")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak operators to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak operators")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak operators")
	rootCmd.Flags().DurationVar(&practiceTimeout, "timeout", 0, "answer time limit without a level, e.g. 8s (0 disables)")
	rootCmd.Flags().BoolVar(&practicePlain, "plain", false, "line mode even on a terminal")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&scoresPath, "scores", "", "leaderboard file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "session history database")
	rootCmd.PersistentFlags().StringVar(&levelsDir, "levels-dir", "", "level files directory")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "tuimath",
		Level:  log.WarnLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// resolvePaths fills storage paths from flags, then config, then XDG defaults.
func resolvePaths(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "scores", &scoresPath, fileCfg.Paths.Scores)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Paths.DB)
	applyStringConfig(cmd, "levels-dir", &levelsDir, fileCfg.Paths.Levels)
	if scoresPath == "" {
		scoresPath = config.DefaultScoresPath()
	}
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	if levelsDir == "" {
		levelsDir = config.DefaultLevelsDir()
	}
}

func loadPaths(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	resolvePaths(cmd, fileCfg)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List level files",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	if err := loadPaths(cmd); err != nil {
		return err
	}
	logger := newLogger()
	levels, skipped, err := level.NewLoader(levelsDir).LoadAll()
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("no levels found", "dir", levelsDir)
			return fmt.Errorf("levels directory does not exist")
		}
		return fmt.Errorf("failed to read levels directory: %w", err)
	}
	for path, serr := range skipped {
		logger.Warn("skipping level file", "path", path, "err", serr)
	}
	if len(levels) == 0 {
		logger.Warn("no levels found", "dir", levelsDir)
		return fmt.Errorf("no levels found")
	}
	out := cmd.OutOrStdout()
	for _, lvl := range levels {
		line := fmt.Sprintf("%s\t%s\tdigits %v", lvl.Name, strings.Join(lvl.Operators, ""), lvl.Digits)
		if lvl.Timeout > 0 {
			line += fmt.Sprintf("\ttimeout %.1fs", lvl.Timeout)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newScoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
}

func runScoresCmd(cmd *cobra.Command, _ []string) error {
	if err := loadPaths(cmd); err != nil {
		return err
	}
	records, err := store.NewScoreFile(scoresPath).Load()
	if err != nil {
		return err
	}
	board := stats.NewLeaderboard(records, stats.LeaderboardSize)
	return stats.RenderLeaderboard(cmd.OutOrStdout(), board.Records())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLevel, "level", "", "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a report instead of the interactive browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if err := loadPaths(cmd); err != nil {
		return err
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	cfg := model.StatsConfig{
		Level:       statsLevel,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	logger := newLogger()
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", "err", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if !statsPlain && isInteractive() {
		program := tea.NewProgram(statsui.NewModel(report, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.PlotScores(out, report.Sessions, 0, 0); err != nil {
		return err
	}
	if err := stats.RenderScoreCurve(out, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := stats.RenderSessionTable(out, report.Sessions); err != nil {
		return err
	}
	return stats.RenderOpTable(out, report.OpAggsWindow)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
