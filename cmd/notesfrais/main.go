package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"notesfrais/internal/cli"
	apphttp "notesfrais/internal/http"
	applog "notesfrais/internal/log"
)

func main() {
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.MustLoadConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, os.Stdout)

	api := cli.NewAPIClient(cfg, logger)
	deps := apphttp.Deps{Lister: api, Scanner: api, Moderator: api}

	j, err := cli.InitJournal(cfg, logger)
	if err != nil {
		logger.Error("Failed to open scan journal", applog.FieldError, err)
		os.Exit(1)
	}
	if j != nil {
		defer j.Close()
		deps.Recorder = j
		logger.Info("Scan journal enabled", "path", cfg.JournalDBPath)
	}

	// Moderation events are optional: a broker outage must not keep the
	// page from starting.
	broker, err := cli.InitAMQP(cfg, logger)
	if err != nil {
		logger.Warn("Moderation events disabled", applog.FieldError, err)
	}
	if broker != nil {
		defer broker.Close()
		deps.Publisher = broker
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		UpstreamURL:  cfg.APIBaseURL,
		UpstreamAuth: cfg.APISessionCookie,
		Viewer:       cfg.ViewerEmail,
		IsAdmin:      cfg.IsAdmin(),
		UploadsBase:  cfg.UploadsBase,
		SessionTTL:   cfg.SessionTTL,
		SessionMax:   cfg.SessionMax,
		Logger:       logger,
	}, deps)
	if err != nil {
		logger.Error("Failed to build server", applog.FieldError, err)
		os.Exit(1)
	}

	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = cfg.ScanTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	srv.Start()
	logger.Info("Starting notesfrais page host",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"upstream", cfg.APIBaseURL,
		"admin", cfg.IsAdmin())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
