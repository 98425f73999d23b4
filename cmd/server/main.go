/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sales performance tracker server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (file + TRACKER_ environment overrides)
  3. Open the record store (memory, sqlite, or postgres)
  4. Build the tracker service with the incentive rate table
  5. Configure the HTTP router and the reminder sweep
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to the config file (default: ./config.yaml if present;
           a missing default is fine, env vars and defaults take over)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the reminder sweep
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the store
  5. Exit

EXAMPLES:
  # Run with defaults (sqlite at tracker.db)
  TRACKER_JWT_SECRET=dev ./server

  # Run against postgres
  TRACKER_STORE_DRIVER=postgres \
  TRACKER_STORE_POSTGRES_URL=postgres://localhost/tracker \
  TRACKER_JWT_SECRET=dev ./server

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration loading
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vantage/sales-tracker/api"
	"github.com/vantage/sales-tracker/auth"
	"github.com/vantage/sales-tracker/config"
	"github.com/vantage/sales-tracker/store"
	"github.com/vantage/sales-tracker/store/memory"
	"github.com/vantage/sales-tracker/store/postgres"
	"github.com/vantage/sales-tracker/store/sqlite"
	"github.com/vantage/sales-tracker/tracker"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml if present)")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(*configPath, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	rates, err := cfg.RateTable()
	if err != nil {
		return fmt.Errorf("rate table: %w", err)
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	svc, err := tracker.NewService(st, rates)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	tm := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	handler := api.NewHandler(svc, log)
	router := api.NewRouter(handler, tm, cfg.Server.AllowedOrigins)

	sweep := api.NewReminderSweep(svc, log, cfg.Reminder.CronSpec)
	if cfg.Reminder.Enabled {
		if err := sweep.Start(); err != nil {
			return fmt.Errorf("start reminder sweep: %w", err)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "driver", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	sweep.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// openStore builds the configured store and a close func. The memory
// driver has nothing to close.
func openStore(cfg *config.Config) (store.RecordStore, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), func() {}, nil
	case "sqlite":
		st, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		st, err := postgres.New(context.Background(), cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
