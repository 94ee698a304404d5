package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/tuimath/internal/model"
)

// ScoreFile persists the leaderboard as one "<points> <name>" line per record.
type ScoreFile struct {
	Path string
}

// NewScoreFile returns a leaderboard store backed by path.
func NewScoreFile(path string) *ScoreFile {
	return &ScoreFile{Path: path}
}

// Load reads all records in file order. A missing file is an empty table.
func (f *ScoreFile) Load() ([]model.ScoreRecord, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open scores: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only scores file.
			_ = cerr
		}
	}()

	var records []model.ScoreRecord
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseScoreLine(line)
		if err != nil {
			return nil, fmt.Errorf("scores line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}
	return records, nil
}

// Save replaces the file with records. The write goes through a temp file
// and a rename so a failed save leaves the previous table intact.
func (f *ScoreFile) Save(records []model.ScoreRecord) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scores dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "scores-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp scores: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, rec := range records {
		if _, err := fmt.Fprintf(writer, "%d %s\n", rec.Points, SanitizeName(rec.Name)); err != nil {
			return fmt.Errorf("failed to write scores: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush scores: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close scores: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}
	return nil
}

// SanitizeName flattens a player name onto a single line.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "anonymous"
	}
	return name
}

func parseScoreLine(line string) (model.ScoreRecord, error) {
	pointsField, name, _ := strings.Cut(strings.TrimLeft(line, " "), " ")
	points, err := strconv.Atoi(pointsField)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("invalid points %q", pointsField)
	}
	return model.ScoreRecord{Name: name, Points: points}, nil
}
