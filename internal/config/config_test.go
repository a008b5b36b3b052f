package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Feature: clickrush, Property 10: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.:-]{1,20}`)

	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasBackendURL") {
			cfg.BackendURL = nonEmptyString.Draw(t, "backendURL")
		}
		if rapid.Bool().Draw(t, "hasDefaultFormat") {
			cfg.DefaultFormat = rapid.SampledFrom(Formats).Draw(t, "defaultFormat")
		}
		if rapid.Bool().Draw(t, "hasGameSeconds") {
			cfg.GameSeconds = rapid.IntRange(1, 120).Draw(t, "gameSeconds")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")
		fromEnv := configGen.Draw(t, "env")

		merged := Merge(global, project, fromEnv)
		defaults := Defaults()

		checkField(t, "BackendURL",
			[]string{global.BackendURL, project.BackendURL, fromEnv.BackendURL},
			defaults.BackendURL, merged.BackendURL)
		checkField(t, "DefaultFormat",
			[]string{global.DefaultFormat, project.DefaultFormat, fromEnv.DefaultFormat},
			defaults.DefaultFormat, merged.DefaultFormat)
		checkField(t, "GameSeconds",
			[]int{global.GameSeconds, project.GameSeconds, fromEnv.GameSeconds},
			defaults.GameSeconds, merged.GameSeconds)
	})
}

// checkField asserts that the merged value is the last non-zero layer,
// or the default when every layer is zero.
func checkField[T comparable](t *rapid.T, name string, layers []T, defaultVal, mergedVal T) {
	t.Helper()
	var zero T
	want := defaultVal
	for _, v := range layers {
		if v != zero {
			want = v
		}
	}
	if mergedVal != want {
		t.Fatalf("%s: layers %v, expected %v, got %v", name, layers, want, mergedVal)
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.BackendURL != "http://localhost:8081" {
		t.Errorf("BackendURL: got %q", d.BackendURL)
	}
	if d.GameSeconds != 10 || d.WarningSeconds != 3 || d.MilestoneEvery != 10 {
		t.Errorf("game rules: got %+v", d)
	}
	if d.PreRoll().Seconds() != 1 || d.NotificationDelay().Seconds() != 2 {
		t.Errorf("timings: pre-roll %v, notification delay %v", d.PreRoll(), d.NotificationDelay())
	}
	if d.LeaderboardRefresh().Seconds() != 30 {
		t.Errorf("LeaderboardRefresh: got %v", d.LeaderboardRefresh())
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero game", func(c *Config) { c.GameSeconds = 0 }, "game_seconds"},
		{"negative pre-roll", func(c *Config) { c.PreRollMS = -1 }, "pre_roll_ms"},
		{"zero milestone", func(c *Config) { c.MilestoneEvery = 0 }, "milestone_every"},
		{"unknown format", func(c *Config) { c.DefaultFormat = "xml" }, "default_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	if *cfg != Defaults() {
		t.Errorf("want defaults, got %+v", cfg)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadProjectYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yml := "backend_url: http://scores.internal:9000\ngame_seconds: 15\ndefault_format: markdown\n"
	if err := os.WriteFile(filepath.Join(dir, ".clickrush.yaml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config from .clickrush.yaml")
	}
	if cfg.BackendURL != "http://scores.internal:9000" || cfg.GameSeconds != 15 || cfg.DefaultFormat != "markdown" {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadProjectPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	os.WriteFile(filepath.Join(dir, ".clickrushconfig"), []byte(`{"game_seconds": 20}`), 0o644)
	os.WriteFile(filepath.Join(dir, ".clickrush.yaml"), []byte("game_seconds: 30\n"), 0o644)

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if cfg == nil || cfg.GameSeconds != 20 {
		t.Errorf("expected JSON project config to win, got %+v", cfg)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend:8081")
	t.Setenv("CLICKRUSH_GAME_SECONDS", "5")
	t.Setenv("CLICKRUSH_FORMAT", "json")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.BackendURL != "http://backend:8081" || cfg.GameSeconds != 5 || cfg.DefaultFormat != "json" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.PreRollMS != 0 {
		t.Errorf("unset variable should stay zero, got %d", cfg.PreRollMS)
	}
}

func TestLoadEnvBadNumber(t *testing.T) {
	t.Setenv("CLICKRUSH_GAME_SECONDS", "ten")
	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for non-numeric CLICKRUSH_GAME_SECONDS")
	}
}

func TestLoadLayersEnvOverFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	cfgDir := filepath.Join(home, ".config", "clickrush")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(`{"backend_url":"http://global:1","game_seconds":12}`), 0o644)
	t.Setenv("BACKEND_URL", "http://env:2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://env:2" {
		t.Errorf("BackendURL: got %q", cfg.BackendURL)
	}
	if cfg.GameSeconds != 12 {
		t.Errorf("GameSeconds: got %d", cfg.GameSeconds)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := filepath.Join(tmp, ".config", "clickrush")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid JSON, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "config.json") {
		t.Errorf("error should mention the file path: %v", err)
	}
}
