// Package level loads level descriptors from JSON or YAML files.
package level

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/generator"
)

// Level describes a drill: allowed operators, operand digit widths and an
// optional answer timeout in seconds.
type Level struct {
	Name      string   `json:"name" yaml:"name"`
	Operators []string `json:"operators" yaml:"operators"`
	Digits    []int    `json:"digits" yaml:"digits"`
	Timeout   float64  `json:"timeout" yaml:"timeout"`

	FilePath string `json:"-" yaml:"-"`
}

// Ops maps the operator symbols, discarding unrecognized ones.
func (l Level) Ops() (ops []arith.Op, dropped []string, err error) {
	ops, dropped = arith.ParseOps(l.Operators)
	if len(ops) == 0 {
		return nil, dropped, fmt.Errorf("level %q has no usable operators", l.Name)
	}
	return ops, dropped, nil
}

// Ranges returns the operand ranges. A single digit width applies to both operands.
func (l Level) Ranges() (generator.Range, generator.Range, error) {
	if len(l.Digits) != 1 && len(l.Digits) != 2 {
		return generator.Range{}, generator.Range{}, fmt.Errorf("level %q: digits must list 1 or 2 widths", l.Name)
	}
	for _, d := range l.Digits {
		if d < 1 || d > generator.MaxDigits {
			return generator.Range{}, generator.Range{}, fmt.Errorf("level %q: digit widths must be within 1..%d, got %d", l.Name, generator.MaxDigits, d)
		}
	}
	a := generator.DigitsRange(l.Digits[0])
	if len(l.Digits) == 1 {
		return a, a, nil
	}
	return a, generator.DigitsRange(l.Digits[1]), nil
}

func (l Level) TimeoutDuration() time.Duration {
	if l.Timeout <= 0 {
		return 0
	}
	return time.Duration(l.Timeout * float64(time.Second))
}

// Parse decodes a level from data using the format implied by ext.
func Parse(data []byte, ext string) (Level, error) {
	var lvl Level
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &lvl); err != nil {
			return Level{}, fmt.Errorf("json unmarshal: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &lvl); err != nil {
			return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
		}
	default:
		return Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
	return lvl, nil
}

// Supported reports whether path has a level file extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Loader reads levels from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a level loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Root: dir}
}

// LoadFile loads a single level file. The name defaults to the file name.
func (l *Loader) LoadFile(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	ext := filepath.Ext(path)
	lvl, err := Parse(data, ext)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}
	lvl.FilePath = path
	return lvl, nil
}

// LoadAll loads every level file in the root directory, sorted by name.
// Files that fail to parse are returned in skipped.
func (l *Loader) LoadAll() (levels []Level, skipped map[string]error, err error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, nil, err
	}
	skipped = map[string]error{}
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}
		path := filepath.Join(l.Root, entry.Name())
		lvl, err := l.LoadFile(path)
		if err != nil {
			skipped[path] = err
			continue
		}
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Name < levels[j].Name
	})
	return levels, skipped, nil
}

// Find loads a level by name or by path.
func (l *Loader) Find(name string) (Level, error) {
	if Supported(name) {
		if _, err := os.Stat(name); err == nil {
			return l.LoadFile(name)
		}
	}
	levels, _, err := l.LoadAll()
	if err != nil {
		return Level{}, fmt.Errorf("failed to read levels: %w", err)
	}
	for _, lvl := range levels {
		if lvl.Name == name {
			return lvl, nil
		}
	}
	return Level{}, fmt.Errorf("level not found: %s", name)
}
