// Package config loads and validates the daemon configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidationError reports an invalid configuration value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Config holds the daemon configuration.
type Config struct {
	// DefaultLayout is the layout used by monitors with no explicit
	// selection. Must name a builtin or a custom layout.
	DefaultLayout string `yaml:"default_layout"`

	// OverlapTolerance is the fraction of monitor area a layout's zones
	// may leave uncovered or doubly covered before registration fails.
	OverlapTolerance float64 `yaml:"overlap_tolerance"`

	// GapSize is the pixel margin applied around a window when it is
	// placed into a zone. Zone boundaries themselves stay gap-less.
	GapSize int `yaml:"gap_size"`

	// LayoutsDir holds custom layout YAML files, one layout per file.
	// Empty disables custom layouts.
	LayoutsDir string `yaml:"layouts_dir"`

	// StateFile is where assignments are persisted between sessions.
	// Empty selects the XDG state directory default.
	StateFile string `yaml:"state_file"`

	LogLevel string `yaml:"log_level"`

	// ReconcileIntervalSeconds is how often the daemon polls for closed
	// windows and monitor changes.
	ReconcileIntervalSeconds int `yaml:"reconcile_interval_seconds"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DefaultLayout:            "halves",
		OverlapTolerance:         0,
		LayoutsDir:               "",
		StateFile:                "",
		LogLevel:                 "info",
		ReconcileIntervalSeconds: 2,
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.DefaultLayout == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	if c.OverlapTolerance < 0 || c.OverlapTolerance > 0.5 {
		return &ValidationError{Path: "overlap_tolerance", Err: fmt.Errorf("overlap_tolerance must be between 0 and 0.5")}
	}
	if c.GapSize < 0 || c.GapSize > 200 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be between 0 and 200")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.ReconcileIntervalSeconds < 1 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 1")}
	}
	return nil
}

// EffectiveStateFile resolves the state file path, applying the XDG default
// when unset.
func (c *Config) EffectiveStateFile() (string, error) {
	if c.StateFile != "" {
		return expandHome(c.StateFile)
	}
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, "zonetile", "state.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "zonetile", "state.json"), nil
}

// EffectiveLayoutsDir resolves the custom layouts directory, empty when
// custom layouts are disabled.
func (c *Config) EffectiveLayoutsDir() (string, error) {
	if c.LayoutsDir == "" {
		return "", nil
	}
	return expandHome(c.LayoutsDir)
}

func expandHome(path string) (string, error) {
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
