// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Paths    PathsConfig    `toml:"paths"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Min        *int     `toml:"min"`
	Max        *int     `toml:"max"`
	Operators  *string  `toml:"operators"`
	Rounds     *int     `toml:"rounds"`
	Level      *string  `toml:"level"`
	Player     *string  `toml:"player"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// PathsConfig overrides storage locations.
type PathsConfig struct {
	Scores *string `toml:"scores"`
	DB     *string `toml:"db"`
	Levels *string `toml:"levels"`
}

// Template is written by `tuimath config` when no config file exists.
const Template = `# tuimath configuration

[practice]
# min = 1
# max = 99
# operators = "+-*/"
# rounds = 10
# level = ""
# player = ""
# focus-weak = false
# weak-top = 2
# weak-factor = 1.5
# weak-window = 20

[paths]
# scores = ""
# db = ""
# levels = ""
`

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
