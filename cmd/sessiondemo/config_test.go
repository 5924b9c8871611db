package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/icza/mighty"
	"github.com/sesskit/session"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessiondemo.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	eq := mighty.Eq(t)

	cfg, err := LoadConfig("")
	eq(nil, err)
	eq(*DefaultConfig(), *cfg)
}

func TestLoadConfigFile(t *testing.T) {
	eq := mighty.Eq(t)

	cfg, err := LoadConfig(writeConfig(t, `
addr = ":9090"
timeout_minutes = 15
elapsed = "continuous"
store = "sqlite"
sqlite_path = "/tmp/s.db"
cleaner_interval = "1m"
cookie_name = "sid"
allow_http = false
log_level = "debug"
`))
	eq(nil, err)
	eq(":9090", cfg.Addr)
	eq(15, cfg.TimeoutMinutes)
	eq("sqlite", cfg.Store)
	eq("/tmp/s.db", cfg.SQLitePath)
	eq(time.Minute, cfg.CleanerInterval.Duration)
	eq("sid", cfg.CookieName)
	eq(false, cfg.AllowHTTP)

	mode, err := cfg.elapsedMode()
	eq(nil, err)
	eq(session.Continuous, mode)
}

func TestLoadConfigPartial(t *testing.T) {
	eq := mighty.Eq(t)

	cfg, err := LoadConfig(writeConfig(t, `timeout_minutes = 3`))
	eq(nil, err)
	eq(3, cfg.TimeoutMinutes)
	eq(DefaultConfig().Addr, cfg.Addr)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		errPart string
	}{
		{"timeout", `timeout_minutes = 0`, "timeout_minutes"},
		{"elapsed", `elapsed = "hourly"`, "elapsed mode"},
		{"store", `store = "redis"`, "unknown store"},
		{"sqlite path", "store = \"sqlite\"\nsqlite_path = \"\"", "sqlite_path"},
		{"interval", `cleaner_interval = "soon"`, "failed to load config"},
		{"log level", `log_level = "loud"`, "log_level"},
		{"syntax", `addr = `, "failed to load config"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, c.content))
			if err == nil || !strings.Contains(err.Error(), c.errPart) {
				t.Errorf("expected error containing %q, got: %v", c.errPart, err)
			}
		})
	}
}
