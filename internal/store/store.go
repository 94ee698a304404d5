// Package store handles session history in SQLite and the leaderboard file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			session_key TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			level TEXT NOT NULL,
			score INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			max_combo INTEGER NOT NULL,
			median_ms REAL NOT NULL,
			ended_reason TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_rounds (
			session_id INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			a INTEGER NOT NULL,
			b INTEGER NOT NULL,
			op TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL,
			delta INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_rounds_op ON session_rounds(op);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its scored rounds.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, rounds []model.RoundStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_key, started_at, ended_at, level, score, correct, incorrect, max_combo, median_ms, ended_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Key,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Level,
		stats.Score,
		stats.Correct,
		stats.Incorrect,
		stats.MaxCombo,
		stats.MedianMs,
		stats.EndedReason,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rounds) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_rounds (session_id, idx, a, b, op, answer, correct, delta, latency_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, r := range rounds {
			if _, err = stmt.ExecContext(ctx, id, i, r.A, r.B, r.Op, r.Answer, boolToInt(r.Correct), r.Delta, r.LatencyMs); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWeakOps aggregates operator stats over the most recent sessions.
func (s *Store) GetWeakOps(ctx context.Context, window int, level string) ([]model.OpAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR level = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT r.op, SUM(r.correct) AS correct, SUM(1 - r.correct) AS incorrect,
		SUM(r.latency_ms) AS latency_sum_ms, COUNT(*) AS latency_count
	FROM session_rounds r
	JOIN recent_sessions rs ON rs.id = r.session_id
	GROUP BY r.op`

	rows, err := s.db.QueryContext(ctx, query, level, level, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanOpAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, level, score, correct, incorrect, max_combo, median_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Level, &agg.Score, &agg.Correct, &agg.Incorrect, &agg.MaxCombo, &agg.MedianMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListOpAggregatesForSessions aggregates per-operator stats across sessions.
func (s *Store) ListOpAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.OpAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT op, SUM(correct) AS correct, SUM(1 - correct) AS incorrect,
		SUM(latency_ms) AS latency_sum_ms, COUNT(*) AS latency_count
		FROM session_rounds
		WHERE session_id IN (%s)
		GROUP BY op`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanOpAggregates(rows)
}

func scanOpAggregates(rows *sql.Rows) ([]model.OpAggregate, error) {
	var result []model.OpAggregate
	for rows.Next() {
		var agg model.OpAggregate
		if err := rows.Scan(&agg.Op, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
