/*
This is a timed session demo application.

It starts a web server, and registers a handler to "/demo".
Sessions time out after the configured minutes of inactivity.

Code demonstrates session access, login, logout and timeout.
*/
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/sesskit/session"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:          "sessiondemo",
		Short:        "Serve a demo page using timed sessions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path of the TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides the config file)")

	return cmd
}

func run(cfg *Config) error {
	level, _ := cfg.level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	h, closeFn, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Info("Session demo is about to start", "url", fmt.Sprintf("http://%s/demo", cfg.Addr))
	return http.ListenAndServe(cfg.Addr, h)
}

// newServer returns the handler of the demo server, and a function to release its resources.
func newServer(cfg *Config, logger *slog.Logger) (http.Handler, func(), error) {
	var store session.Store
	mux := http.NewServeMux()

	switch cfg.Store {
	case "sqlite":
		st, err := session.NewSQLiteStore(cfg.SQLitePath, &session.SQLiteStoreOptions{Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		mux.Handle("/demo/purge", session.PurgeExpiredFunc(st))
		store = st
	default:
		store = session.NewInMemStoreOptions(&session.InMemStoreOptions{
			SessCleanerInterval: cfg.CleanerInterval.Duration,
			Logger:              logger,
		})
	}

	binder := session.NewCookieBinderOptions(store, &session.CookieBinderOptions{
		SessIDCookieName: cfg.CookieName,
		AllowHTTP:        cfg.AllowHTTP,
	})

	elapsed, _ := cfg.elapsedMode()
	mw := session.Middleware(binder, &session.Options{
		Timeout: cfg.TimeoutMinutes,
		Elapsed: elapsed,
		Logger:  logger,
	})
	mux.Handle("/demo", mw(demoHandler(logger)))

	return mux, binder.Close, nil
}
