// Package main implements the entry point for the cardgen API server, which
// turns vocabulary lists into illustrated, printable flashcard decks.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// main is the entry point for the cardgen server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("cardgen server: %v", err)
	}
}

// run loads configuration, sets up logging, wires the application and serves
// HTTP until SIGINT or SIGTERM.
func run() error {
	cfg, err := loadAppConfig(os.Getenv("CARDGEN_CONFIG_FILE"))
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.LLM.ModelName,
		"default_api_key_present", cfg.LLM.GeminiAPIKey != "")

	return app.startHTTPServer(ctx, app.setupRouter())
}
