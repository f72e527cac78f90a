package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	def := DefaultConfig()
	if cfg.DefaultLayout != def.DefaultLayout || cfg.LogLevel != def.LogLevel {
		t.Fatalf("got %+v, want defaults %+v", cfg, def)
	}
	// Strict tiling unless the config file relaxes it.
	if cfg.OverlapTolerance != 0 {
		t.Fatalf("overlap_tolerance default = %v, want 0", cfg.OverlapTolerance)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "default_layout: thirds\nlog_level: debug\nreconcile_interval_seconds: 5\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultLayout != "thirds" {
		t.Fatalf("default_layout = %q, want thirds", cfg.DefaultLayout)
	}
	if cfg.LogLevel != "debug" || cfg.ReconcileIntervalSeconds != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Untouched fields keep defaults.
	if cfg.OverlapTolerance != DefaultConfig().OverlapTolerance {
		t.Fatalf("overlap_tolerance = %v, want default", cfg.OverlapTolerance)
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "default_layout: halves\nno_such_key: 1\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty default layout", func(c *Config) { c.DefaultLayout = "" }, "default_layout"},
		{"negative tolerance", func(c *Config) { c.OverlapTolerance = -0.1 }, "overlap_tolerance"},
		{"huge tolerance", func(c *Config) { c.OverlapTolerance = 0.9 }, "overlap_tolerance"},
		{"negative gap", func(c *Config) { c.GapSize = -1 }, "gap_size"},
		{"huge gap", func(c *Config) { c.GapSize = 500 }, "gap_size"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"zero interval", func(c *Config) { c.ReconcileIntervalSeconds = 0 }, "reconcile_interval_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tc.path {
				t.Fatalf("err = %v, want ValidationError at %q", err, tc.path)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEffectiveStateFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	cfg := DefaultConfig()
	path, err := cfg.EffectiveStateFile()
	if err != nil {
		t.Fatalf("EffectiveStateFile: %v", err)
	}
	if path != "/tmp/xdg-state/zonetile/state.json" {
		t.Fatalf("path = %q", path)
	}

	cfg.StateFile = "/explicit/state.json"
	path, err = cfg.EffectiveStateFile()
	if err != nil || path != "/explicit/state.json" {
		t.Fatalf("explicit path = %q, %v", path, err)
	}
}

func TestLoadLayoutsDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wide.yaml"), strings.Join([]string{
		"name: Wide Main",
		"zones:",
		"  - {x: 0, y: 0, width: 0.7, height: 1}",
		"  - {x: 0.7, y: 0, width: 0.3, height: 1}",
	}, "\n"))
	writeFile(t, filepath.Join(dir, "broken.yaml"), "zones: {not: a list}\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "not yaml\n")

	layouts, errs := LoadLayoutsDir(dir)
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one parse failure", errs)
	}
	if len(layouts) != 1 {
		t.Fatalf("layouts = %d, want 1", len(layouts))
	}
	l := layouts[0]
	if l.ID != "wide" {
		t.Fatalf("id = %q, want wide (from file name)", l.ID)
	}
	if l.Name != "Wide Main" {
		t.Fatalf("name = %q", l.Name)
	}
	if len(l.Zones) != 2 || l.Zones[0].Index != 0 || l.Zones[1].Index != 1 {
		t.Fatalf("zones = %+v", l.Zones)
	}
	if l.Zones[1].Template.X != 0.7 {
		t.Fatalf("zone 1 template = %+v", l.Zones[1].Template)
	}
}

func TestLoadLayoutsDir_Missing(t *testing.T) {
	layouts, errs := LoadLayoutsDir(filepath.Join(t.TempDir(), "absent"))
	if layouts != nil || errs != nil {
		t.Fatalf("got %v %v, want nil nil", layouts, errs)
	}
}
