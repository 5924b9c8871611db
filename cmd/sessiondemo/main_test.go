package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/icza/mighty"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func get(t *testing.T, client *http.Client, u string, form url.Values) string {
	t.Helper()

	var (
		resp *http.Response
		err  error
	)
	if form == nil {
		resp, err = client.Get(u)
	} else {
		resp, err = client.PostForm(u, form)
	}
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func testDemo(t *testing.T, cfg *Config) {
	eq := mighty.Eq(t)

	// Long enough not to time out when the test crosses a minute boundary.
	cfg.TimeoutMinutes = 5

	h, closeFn, err := newServer(cfg, discardLogger)
	eq(nil, err)
	defer closeFn()

	server := httptest.NewServer(h)
	defer server.Close()

	jar, err := cookiejar.New(nil)
	eq(nil, err)
	client := &http.Client{Jar: jar}
	u := server.URL + "/demo"

	body := get(t, client, u, url.Values{"Login": {"Login"}, "UserName": {"bob"}, "Password": {"x"}})
	eq(true, strings.Contains(body, "Invalid user name or password!"))

	body = get(t, client, u, url.Values{"Login": {"Login"}, "UserName": {"bob"}, "Password": {"a"}})
	eq(true, strings.Contains(body, "Hello <b>bob</b>"))
	eq(true, strings.Contains(body, "<b>1</b> times"))

	body = get(t, client, u, nil)
	eq(true, strings.Contains(body, "<b>2</b> times"))

	body = get(t, client, u, url.Values{"Logout": {"Logout"}})
	eq(false, strings.Contains(body, "Hello"))

	body = get(t, client, u, nil)
	eq(false, strings.Contains(body, "Hello"))
}

func TestDemoMemory(t *testing.T) {
	cfg := DefaultConfig()
	testDemo(t, cfg)
}

func TestDemoSQLite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "sessions.db")
	testDemo(t, cfg)
}

func TestRootCmdBadConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing config file")
	}
}
