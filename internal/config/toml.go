// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults used when neither a flag nor the config file sets a value.
const (
	DefaultWPM            = 300.0
	DefaultMinWPM         = 60.0
	DefaultMaxWPM         = 1000.0
	DefaultMode           = "single"
	DefaultChunk          = 1
	DefaultFlowMultiplier = 1.0
	DefaultLang           = "en"
	DefaultWords          = 150
	DefaultCurveWindow    = 10
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reader   ReaderConfig   `toml:"reader"`
	Practice PracticeConfig `toml:"practice"`
}

// ReaderConfig maps pacing settings.
type ReaderConfig struct {
	WPM            *float64 `toml:"wpm"`
	TargetWPM      *float64 `toml:"target-wpm"`
	MinWPM         *float64 `toml:"min-wpm"`
	MaxWPM         *float64 `toml:"max-wpm"`
	Mode           *string  `toml:"mode"`
	Chunk          *int     `toml:"chunk"`
	Device         *string  `toml:"device"`
	FlowMultiplier *float64 `toml:"flow-multiplier"`
	Resume         *bool    `toml:"resume"`
}

// PracticeConfig maps generated practice text settings.
type PracticeConfig struct {
	Lang  *string `toml:"lang"`
	Words *int    `toml:"words"`
}

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

// Template returns the commented config written by `tuiread config`.
func Template() string {
	return fmt.Sprintf(`# tuiread configuration
# Uncomment a value to enable it. CLI flags override config values.

[reader]
# wpm = %.0f               # Starting speed in words per minute
# target-wpm = %.0f        # Goal used by the speed meter (default: wpm)
# min-wpm = %.0f            # Lowest speed reachable with -/+
# max-wpm = %.0f          # Highest speed reachable with -/+
# mode = %q          # single (one unit at a time) or flow (scrolling line)
# chunk = %d                # Words per unit: 1, 2 or 3
# device = ""              # Device id for history and resume (default: hostname)
# flow-multiplier = %.1f    # Scroll velocity scale in flow mode
# resume = true            # Offer to continue an interrupted text

[practice]
# lang = %q              # Word list language for --practice
# words = %d             # Words per generated practice text
`,
		DefaultWPM,
		DefaultWPM,
		DefaultMinWPM,
		DefaultMaxWPM,
		DefaultMode,
		DefaultChunk,
		DefaultFlowMultiplier,
		DefaultLang,
		DefaultWords,
	)
}
