package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/cardgen/internal/api/shared"
	"github.com/phrazzld/cardgen/internal/export"
	"github.com/phrazzld/cardgen/internal/platform/logger"
)

// ExportHandler serves the deck exports. Every export is refused while a
// full-deck batch is running.
type ExportHandler struct {
	deckService DeckService
	logger      *slog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(deckService DeckService, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ExportHandler")
	}

	return &ExportHandler{
		deckService: deckService,
		logger:      logger.With(slog.String("component", "export_handler")),
	}
}

// Archive handles GET /api/export/archive requests with a zip of the card images.
func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deckService.Exportable()
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var buf bytes.Buffer
	entries, err := export.WriteArchive(&buf, snap.Cards())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("archive exported",
		slog.Int("images", len(entries)),
		slog.Int("cards", snap.Len()))

	writeAttachment(w, "application/zip", export.ArchiveName, buf.Bytes())
}

// Manifest handles GET /api/export/manifest requests with the JSON card data.
func (h *ExportHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deckService.Exportable()
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteManifest(&buf, snap.Cards()); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	writeAttachment(w, "application/json", export.ManifestName, buf.Bytes())
}

// Print handles GET /api/export/print requests with the printable HTML pages.
func (h *ExportHandler) Print(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deckService.Exportable()
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderPrint(&buf, snap.Cards(), h.deckService.Grid()); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ExportHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
