package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/cardgen/internal/api"
	apiMiddleware "github.com/phrazzld/cardgen/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	deckHandler := api.NewDeckHandler(app.deckService, app.defaultCredentials(), app.logger)
	exportHandler := api.NewExportHandler(app.deckService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Deck endpoints
		r.Post("/deck", deckHandler.CreateDeck)
		r.Get("/deck", deckHandler.GetDeck)
		r.Get("/deck/events", app.broadcaster.ServeHTTP)
		r.Post("/cards/{term}/regenerate", deckHandler.RegenerateCard)

		// Export endpoints
		r.Get("/export/archive", exportHandler.Archive)
		r.Get("/export/manifest", exportHandler.Manifest)
		r.Get("/export/print", exportHandler.Print)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
