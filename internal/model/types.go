// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Min        int
	Max        int
	Operators  string
	Rounds     int
	Level      string
	Player     string
	Seed       int64
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
	ScoresPath string
	DBPath     string
	LevelsDir  string
	Plain      bool
	Timeout    time.Duration
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level       string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ScoreRecord is one leaderboard entry.
type ScoreRecord struct {
	Name   string
	Points int
}

// SessionStats captures a completed drill session.
type SessionStats struct {
	Key         string
	StartedAt   time.Time
	EndedAt     time.Time
	Level       string
	Score       int
	Correct     int
	Incorrect   int
	MaxCombo    int
	MedianMs    float64
	EndedReason string
}

// RoundStats stores one scored round of a session.
type RoundStats struct {
	A         int
	B         int
	Op        string
	Answer    string
	Correct   bool
	Delta     int
	LatencyMs int64
}

// OpAggregate aggregates per-operator results across sessions.
type OpAggregate struct {
	Op           string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID int64
	EndedAt   time.Time
	Level     string
	Score     int
	Correct   int
	Incorrect int
	MaxCombo  int
	MedianMs  float64
}
