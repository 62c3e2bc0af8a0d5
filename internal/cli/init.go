// Package cli holds the start-up steps shared by the page host and the
// command line tool, plus the terminal styles of the latter.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesfrais/internal/amqp"
	"notesfrais/internal/apiclient"
	"notesfrais/internal/config"
	"notesfrais/internal/export"
	"notesfrais/internal/journal"
	applog "notesfrais/internal/log"
)

// SetupLogger builds the text logger at level and makes it the default.
func SetupLogger(level string, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads the configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadAndValidateConfig that exits the process on failure.
func MustLoadConfig(logger *applog.Logger) *config.Config {
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// NewAPIClient connects to the expense API described by cfg.
func NewAPIClient(cfg *config.Config, logger *applog.Logger) *apiclient.Client {
	return apiclient.New(apiclient.Options{
		BaseURL:       cfg.APIBaseURL,
		SessionCookie: cfg.APISessionCookie,
		Timeout:       cfg.APITimeout,
		ScanTimeout:   cfg.ScanTimeout,
		Logger:        logger,
	})
}

// InitJournal opens the scan journal. It returns nil when none is configured.
func InitJournal(cfg *config.Config, logger *applog.Logger) (*journal.Journal, error) {
	if cfg.JournalDBPath == "" {
		return nil, nil
	}
	j, err := journal.Open(cfg.JournalDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open scan journal %s: %w", cfg.JournalDBPath, err)
	}
	return j, nil
}

// InitAMQP connects to the broker. It returns nil when none is configured.
func InitAMQP(cfg *config.Config, logger *applog.Logger) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	return c, nil
}

// InitSheets authenticates against the configured spreadsheet.
func InitSheets(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*export.Sheets, error) {
	if !cfg.SheetsEnabled() {
		return nil, fmt.Errorf("no spreadsheet configured (GOOGLE_SPREADSHEET_ID)")
	}
	return export.NewSheets(ctx, export.SheetsConfig{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
	}, logger)
}

// GracefulShutdown runs cleanup with a deadline of timeout once SIGINT or
// SIGTERM arrives. The returned context ends with the signal; done closes
// once cleanup has returned.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}
