package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardgen/internal/api/shared"
	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/platform/logger"
	"github.com/phrazzld/cardgen/internal/service"
	"github.com/phrazzld/cardgen/internal/store"
)

// DeckService is the subset of service.DeckService used by the handlers.
type DeckService interface {
	StartDeck(ctx context.Context, req service.DeckRequest) (*service.Batch, error)
	RegenerateCard(ctx context.Context, req service.RegenerateRequest) (store.Entry, error)
	Snapshot() store.Snapshot
	Progress() service.Progress
	Exportable() (store.Snapshot, error)
	Pages(n int) []layout.Page
	Grid() layout.Grid
}

var _ DeckService = (*service.DeckService)(nil)

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	deckService DeckService
	// defaults fill in a missing api key or model on incoming requests
	defaults generation.Credentials
	logger   *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(deckService DeckService, defaults generation.Credentials, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		deckService: deckService,
		defaults:    defaults,
		logger:      logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /api/deck requests.
// It replaces the deck and starts generating images in the background,
// returning the deck layout with every card pending.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDeckRequest
	if !h.decode(w, r, &req) {
		return
	}

	batch, err := h.deckService.StartDeck(r.Context(), service.DeckRequest{
		Vocabulary:  req.Vocabulary,
		Style:       req.Style,
		Credentials: h.credentials(req.APIKey, req.Model),
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	log.Info("deck generation accepted",
		slog.String("generation_id", batch.GenerationID.String()),
		slog.Int("total", batch.Total()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, DeckResponse{
		GenerationID: batch.GenerationID,
		Generating:   true,
		Completed:    0,
		Total:        batch.Total(),
		Style:        strings.TrimSpace(req.Style),
		Cards:        pendingCards(batch.Cards),
		Pages:        batch.Pages,
	})
}

// GetDeck handles GET /api/deck requests.
// It returns the current deck, its layout and the progress of the last batch.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	snap := h.deckService.Snapshot()
	progress := h.deckService.Progress()

	resp := DeckResponse{
		GenerationID: snap.GenerationID,
		Total:        snap.Len(),
		Style:        snap.Style,
		Cards:        make([]CardResponse, 0, snap.Len()),
		Pages:        h.deckService.Pages(snap.Len()),
	}
	for _, e := range snap.Entries {
		resp.Cards = append(resp.Cards, entryToResponse(e))
		if e.Status != store.CardStatusPending {
			resp.Completed++
		}
	}
	if progress.GenerationID == snap.GenerationID {
		resp.Generating = progress.Generating
		resp.Completed = progress.Completed
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RegenerateCard handles POST /api/cards/{term}/regenerate requests.
// It regenerates the image of the first card with the given term and returns
// the card. A failed generation is reported through the card status.
func (h *DeckHandler) RegenerateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	term := pathTerm(r)
	if term == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid term: required field")
		return
	}

	var req RegenerateCardRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.deckService.RegenerateCard(r.Context(), service.RegenerateRequest{
		Term:        term,
		Hint:        req.Hint,
		Style:       req.Style,
		Credentials: h.credentials(req.APIKey, req.Model),
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	log.Debug("card regenerated",
		slog.String("term", entry.Card.Term),
		slog.String("status", string(entry.Status)))

	shared.RespondWithJSON(w, r, http.StatusOK, entryToResponse(entry))
}

// decode reads and validates a JSON body, writing a 400 response on failure.
func (h *DeckHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format",
			fmt.Errorf("%w: %w", errInvalidRequest, err))
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}

// credentials merges request credentials with the configured defaults.
func (h *DeckHandler) credentials(apiKey, model string) generation.Credentials {
	creds := generation.Credentials{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
	if creds.APIKey == "" {
		creds.APIKey = h.defaults.APIKey
	}
	if creds.Model == "" {
		creds.Model = h.defaults.Model
	}
	return creds
}

func (h *DeckHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// pathTerm extracts the {term} URL parameter.
func pathTerm(r *http.Request) string {
	raw := chi.URLParam(r, "term")
	term, err := url.PathUnescape(raw)
	if err != nil {
		term = raw
	}
	return strings.TrimSpace(term)
}
