// Package config provides configuration management for sobel.
// It loads user preferences from ~/.sobel.json and applies environment
// overrides.
//
// The configuration includes:
//   - The edge detector executable to invoke (default ./edge.ml)
//   - The file pattern used by batch and watch modes
//   - The settle delay used by watch mode before processing a file
//
// Missing configuration files yield an empty configuration so the tool
// works with defaults when nothing is configured.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultEdgeBin is the edge detector invoked when nothing else is configured.
	DefaultEdgeBin = "./edge.ml"
	// DefaultPattern selects the files batch and watch modes hand to the edge detector.
	DefaultPattern = "**.{png,jpg,jpeg}"
	// DefaultSettle is how long a watched file must stay unchanged before processing.
	DefaultSettle = 500 * time.Millisecond

	// EnvEdgeBin overrides the configured edge detector.
	EnvEdgeBin = "SOBEL_EDGE_BIN"
)

// Config holds user preferences.
type Config struct {
	EdgeBin  string `json:"edge_bin,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	SettleMS int    `json:"settle_ms,omitempty"`
}

// Path returns the absolute path to the sobel configuration file (~/.sobel.json).
func Path() string {
	home := os.Getenv("HOME")
	if home == "" {
		if wd, _ := os.Getwd(); wd != "" {
			return filepath.Join(wd, ".sobel.json")
		}
	}
	return filepath.Join(home, ".sobel.json")
}

// StateDir returns ~/.sobel, where logs and crash reports live.
func StateDir() string {
	return filepath.Join(filepath.Dir(Path()), ".sobel")
}

// Load reads configuration from disk. If missing, returns an empty config and nil error.
func Load() (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return &Config{}, nil // treat parse issues as empty config (non-fatal)
	}
	return &cfg, nil
}

// Validate parses the config file strictly and reports syntax problems
// that Load silently ignores.
func Validate() error {
	b, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var cfg Config
	return json.Unmarshal(b, &cfg)
}

// ResolveEdgeBin picks the edge detector: flag, then $SOBEL_EDGE_BIN, then
// the config file, then DefaultEdgeBin. cfg may be nil.
func ResolveEdgeBin(flagValue string, cfg *Config) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvEdgeBin); env != "" {
		return env
	}
	if cfg != nil && cfg.EdgeBin != "" {
		return cfg.EdgeBin
	}
	return DefaultEdgeBin
}

// ResolvePattern picks the batch/watch file pattern. cfg may be nil.
func ResolvePattern(flagValue string, cfg *Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Pattern != "" {
		return cfg.Pattern
	}
	return DefaultPattern
}

// Settle returns the configured watch settle delay. cfg may be nil.
func (cfg *Config) Settle() time.Duration {
	if cfg == nil || cfg.SettleMS <= 0 {
		return DefaultSettle
	}
	return time.Duration(cfg.SettleMS) * time.Millisecond
}
