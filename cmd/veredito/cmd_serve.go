package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"veredito/internal/api"
	"veredito/internal/bus"
	"veredito/internal/config"
	"veredito/internal/processor"
	"veredito/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the classification service (NATS consumer + HTTP API)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("veredito starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database is optional; without it verdicts are announced but not kept.
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, verdicts will not be persisted")
	}

	engines, defaultEngine := buildEngines(cfg)
	slog.Info("engines ready", "default", defaultEngine, "model", cfg.Model)

	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	var writer processor.VerdictWriter
	if db != nil {
		writer = db
	}
	proc := processor.New(engines, defaultEngine, writer, busClient, slog.Default())

	if err := busClient.Subscribe(bus.SubjectTranscriptReceived, proc.HandleTranscript); err != nil {
		slog.Error("failed to subscribe to transcript events", "error", err)
		os.Exit(1)
	}

	var reader api.VerdictReader
	if db != nil {
		reader = db
	}
	srv := api.NewServer(cfg.Port, engines, defaultEngine, reader)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if err := busClient.Publish("whizz.agent.veredito.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"engine":    defaultEngine,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("veredito ready", "port", cfg.Port, "engine", defaultEngine)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("veredito stopped")
	return nil
}
