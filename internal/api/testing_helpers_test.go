package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardgen/internal/events"
	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/mocks"
	"github.com/phrazzld/cardgen/internal/platform/memory"
	"github.com/phrazzld/cardgen/internal/service"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router      http.Handler
	service     *service.DeckService
	broadcaster *Broadcaster
}

func newTestServer(t *testing.T, gen *mocks.MockImageGenerator, defaults generation.Credentials) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	emitter := events.NewInMemoryEventEmitter(logger)

	svc, err := service.NewDeckService(memory.NewDeckStore(), gen, emitter, layout.DefaultGrid(), 0, logger)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	broadcaster := NewBroadcaster(func() any { return svc.Progress() }, logger)
	emitter.RegisterHandler(broadcaster)
	t.Cleanup(broadcaster.Close)

	deckHandler := NewDeckHandler(svc, defaults, logger)
	exportHandler := NewExportHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/deck", deckHandler.CreateDeck)
		r.Get("/deck", deckHandler.GetDeck)
		r.Get("/deck/events", broadcaster.ServeHTTP)
		r.Post("/cards/{term}/regenerate", deckHandler.RegenerateCard)
		r.Get("/export/archive", exportHandler.Archive)
		r.Get("/export/manifest", exportHandler.Manifest)
		r.Get("/export/print", exportHandler.Print)
	})

	return &testServer{router: r, service: svc, broadcaster: broadcaster}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !s.service.Generating()
	}, 5*time.Second, 5*time.Millisecond)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
