// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/spese, cmd/spese-worker, and cmd/spese-cli.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg, writing to out, and makes
// it the slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// OpenJournal opens the journal configured in cfg. It returns nil when the
// journal is disabled.
func OpenJournal(cfg *config.Config, logger *applog.Logger) (*storage.Journal, error) {
	if !cfg.JournalEnabled() {
		return nil, nil
	}
	j, err := storage.Open(cfg.JournalDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", cfg.JournalDBPath, err)
	}
	return j, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Fatal logs err and exits.
func Fatal(logger *applog.Logger, msg string, err error) {
	logger.Error(msg, applog.NewFields().WithError(err).ToSlice()...)
	os.Exit(1)
}
