package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable clickrush settings. Zero values mean unset
// and are filled from the layer below when merging.
type Config struct {
	BackendURL                string `json:"backend_url" yaml:"backend_url"`
	GameSeconds               int    `json:"game_seconds" yaml:"game_seconds"`
	PreRollMS                 int    `json:"pre_roll_ms" yaml:"pre_roll_ms"`
	WarningSeconds            int    `json:"warning_seconds" yaml:"warning_seconds"`
	MilestoneEvery            int    `json:"milestone_every" yaml:"milestone_every"`
	NotificationDelayMS       int    `json:"notification_delay_ms" yaml:"notification_delay_ms"`
	LeaderboardRefreshSeconds int    `json:"leaderboard_refresh_seconds" yaml:"leaderboard_refresh_seconds"`
	RequestTimeoutSeconds     int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	DefaultFormat             string `json:"default_format" yaml:"default_format"` // "plain" | "markdown" | "json"
	LogLevel                  string `json:"log_level" yaml:"log_level"`
}

// envConfig is the environment layer. BACKEND_URL matches what the backend
// and web client already use.
type envConfig struct {
	BackendURL                string `env:"BACKEND_URL"`
	GameSeconds               int    `env:"CLICKRUSH_GAME_SECONDS"`
	PreRollMS                 int    `env:"CLICKRUSH_PRE_ROLL_MS"`
	WarningSeconds            int    `env:"CLICKRUSH_WARNING_SECONDS"`
	MilestoneEvery            int    `env:"CLICKRUSH_MILESTONE_EVERY"`
	NotificationDelayMS       int    `env:"CLICKRUSH_NOTIFICATION_DELAY_MS"`
	LeaderboardRefreshSeconds int    `env:"CLICKRUSH_LEADERBOARD_REFRESH_SECONDS"`
	RequestTimeoutSeconds     int    `env:"CLICKRUSH_REQUEST_TIMEOUT_SECONDS"`
	DefaultFormat             string `env:"CLICKRUSH_FORMAT"`
	LogLevel                  string `env:"CLICKRUSH_LOG_LEVEL"`
}

// Formats lists the accepted values of DefaultFormat.
var Formats = []string{"plain", "markdown", "json"}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		BackendURL:                "http://localhost:8081",
		GameSeconds:               10,
		PreRollMS:                 1000,
		WarningSeconds:            3,
		MilestoneEvery:            10,
		NotificationDelayMS:       2000,
		LeaderboardRefreshSeconds: 30,
		RequestTimeoutSeconds:     10,
		DefaultFormat:             "plain",
		LogLevel:                  "info",
	}
}

// Dir returns ~/.config/clickrush.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "clickrush"), nil
}

// LoadGlobal reads ~/.config/clickrush/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFile(filepath.Join(dir, "config.json"), true)
}

// LoadProject reads .clickrushconfig (JSON) or, failing that,
// .clickrush.yaml in the current working directory.
// Returns nil (no error) if neither file exists.
func LoadProject() (*Config, error) {
	cfg, err := loadFile(".clickrushconfig", false)
	if err != nil || cfg != nil {
		return cfg, err
	}
	return loadFile(".clickrush.yaml", false)
}

// loadFile reads and parses a config file at path, as YAML when the
// extension says so and as JSON otherwise.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// LoadEnv reads the environment layer. Unset variables stay zero.
func LoadEnv() (*Config, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg := Config(e)
	return &cfg, nil
}

// Merge layers configs left to right, later layers taking precedence.
// Missing keys fall back to earlier layers, then defaults.
func Merge(layers ...*Config) Config {
	result := Defaults()
	for _, l := range layers {
		if l == nil {
			continue
		}
		overlay(&result, l)
	}
	return result
}

func overlay(dst, src *Config) {
	if src.BackendURL != "" {
		dst.BackendURL = src.BackendURL
	}
	if src.GameSeconds != 0 {
		dst.GameSeconds = src.GameSeconds
	}
	if src.PreRollMS != 0 {
		dst.PreRollMS = src.PreRollMS
	}
	if src.WarningSeconds != 0 {
		dst.WarningSeconds = src.WarningSeconds
	}
	if src.MilestoneEvery != 0 {
		dst.MilestoneEvery = src.MilestoneEvery
	}
	if src.NotificationDelayMS != 0 {
		dst.NotificationDelayMS = src.NotificationDelayMS
	}
	if src.LeaderboardRefreshSeconds != 0 {
		dst.LeaderboardRefreshSeconds = src.LeaderboardRefreshSeconds
	}
	if src.RequestTimeoutSeconds != 0 {
		dst.RequestTimeoutSeconds = src.RequestTimeoutSeconds
	}
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// Load merges defaults, the global file, the project file and the environment.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, err
	}
	fromEnv, err := LoadEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(global, project, fromEnv)
	return cfg, cfg.Validate()
}

// Validate rejects values the game cannot run with.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"game_seconds", c.GameSeconds},
		{"pre_roll_ms", c.PreRollMS},
		{"warning_seconds", c.WarningSeconds},
		{"milestone_every", c.MilestoneEvery},
		{"notification_delay_ms", c.NotificationDelayMS},
		{"leaderboard_refresh_seconds", c.LeaderboardRefreshSeconds},
		{"request_timeout_seconds", c.RequestTimeoutSeconds},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("invalid %s %d: must be positive", p.name, p.value)
		}
	}
	if !ValidFormat(c.DefaultFormat) {
		return fmt.Errorf("invalid default_format %q: want one of %v", c.DefaultFormat, Formats)
	}
	return nil
}

// ValidFormat reports whether f names a supported output format.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func (c Config) PreRoll() time.Duration {
	return time.Duration(c.PreRollMS) * time.Millisecond
}

func (c Config) NotificationDelay() time.Duration {
	return time.Duration(c.NotificationDelayMS) * time.Millisecond
}

func (c Config) LeaderboardRefresh() time.Duration {
	return time.Duration(c.LeaderboardRefreshSeconds) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
