package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardgen/internal/api"
	"github.com/phrazzld/cardgen/internal/config"
	"github.com/phrazzld/cardgen/internal/events"
	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/platform/gemini"
	"github.com/phrazzld/cardgen/internal/platform/memory"
	"github.com/phrazzld/cardgen/internal/prompt"
	"github.com/phrazzld/cardgen/internal/service"
	"github.com/phrazzld/cardgen/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	deckStore   store.DeckStore
	generator   generation.ImageGenerator
	deckService *service.DeckService

	eventEmitter *events.InMemoryEventEmitter
	broadcaster  *api.Broadcaster
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	grid, err := layout.NewGrid(cfg.Layout.Columns, cfg.Layout.Rows)
	if err != nil {
		return nil, fmt.Errorf("invalid layout configuration: %w", err)
	}

	backend, err := gemini.NewImageBackend(logger.With("component", "gemini_backend"), gemini.BackendConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.ModelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini backend: %w", err)
	}

	app.generator, err = generation.NewClient(
		backend,
		prompt.NewSynthesizer(cfg.Generation.StyleKeywords),
		generation.ClientConfig{
			MaxAttempts:  cfg.Generation.MaxAttempts,
			BackoffBase:  cfg.Generation.BackoffBase(),
			DefaultModel: cfg.LLM.ModelName,
		},
		logger.With("component", "image_client"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image client: %w", err)
	}

	app.deckStore = memory.NewDeckStore()
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.deckService, err = service.NewDeckService(
		app.deckStore,
		app.generator,
		app.eventEmitter,
		grid,
		cfg.Generation.Concurrency,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize deck service: %w", err)
	}

	app.broadcaster = api.NewBroadcaster(func() any { return app.deckService.Progress() }, logger)
	app.eventEmitter.RegisterHandler(app.broadcaster)

	logger.InfoContext(ctx, "application initialized",
		"grid_columns", grid.Columns,
		"grid_rows", grid.Rows,
		"max_attempts", cfg.Generation.MaxAttempts,
		"concurrency", cfg.Generation.Concurrency)

	return app, nil
}

// defaultCredentials are used by requests that carry no api key or model.
func (app *application) defaultCredentials() generation.Credentials {
	return generation.Credentials{
		APIKey: app.config.LLM.GeminiAPIKey,
		Model:  app.config.LLM.ModelName,
	}
}

// cleanup stops background generation. It is safe to call more than once.
func (app *application) cleanup() {
	app.broadcaster.Close()
	app.deckService.Close()
}
