package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sesskit/session"
)

// Config is the configuration of the demo server, loaded from a TOML file.
type Config struct {
	Addr           string `toml:"addr"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
	Elapsed        string `toml:"elapsed"` // "calendar" or "continuous"

	Store           string   `toml:"store"` // "memory" or "sqlite"
	SQLitePath      string   `toml:"sqlite_path"`
	CleanerInterval duration `toml:"cleaner_interval"`

	CookieName string `toml:"cookie_name"`
	AllowHTTP  bool   `toml:"allow_http"`

	LogLevel string `toml:"log_level"`
}

// duration is a time.Duration decoded from strings like "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "localhost:8080",
		TimeoutMinutes:  session.DefaultTimeoutMinutes,
		Elapsed:         "calendar",
		Store:           "memory",
		SQLitePath:      "sessions.db",
		CleanerInterval: duration{10 * time.Second},
		CookieName:      session.DefaultSessIDCookieName,
		AllowHTTP:       true,
		LogLevel:        "info",
	}
}

// LoadConfig loads the configuration from the TOML file at path,
// on top of the defaults. An empty path means the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TimeoutMinutes <= 0 {
		return fmt.Errorf("timeout_minutes must be positive, got %d", c.TimeoutMinutes)
	}
	if _, err := c.elapsedMode(); err != nil {
		return err
	}
	switch c.Store {
	case "memory":
		if c.CleanerInterval.Duration <= 0 {
			return fmt.Errorf("cleaner_interval must be positive, got %v", c.CleanerInterval.Duration)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path must not be empty")
		}
	default:
		return fmt.Errorf("unknown store %q, must be memory or sqlite", c.Store)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) elapsedMode() (session.ElapsedMode, error) {
	switch strings.ToLower(c.Elapsed) {
	case "calendar", "":
		return session.CalendarMinutes, nil
	case "continuous":
		return session.Continuous, nil
	}
	return 0, fmt.Errorf("unknown elapsed mode %q, must be calendar or continuous", c.Elapsed)
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
