package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/cardgen/internal/config"
	"github.com/phrazzld/cardgen/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeImageResponse = `{
  "candidates": [{
    "content": {
      "role": "model",
      "parts": [{"inlineData": {"mimeType": "image/png", "data": "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="}}]
    }
  }]
}`

// newFakeGemini answers every generateContent call with an image, except for
// prompts containing failTerm, which always get a 400.
func newFakeGemini(t *testing.T, failTerm string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if failTerm != "" && strings.Contains(string(body), failTerm) {
			http.Error(w, `{"error":{"code":400,"message":"boom","status":"INVALID_ARGUMENT"}}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, fakeImageResponse)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		LLM: config.LLMConfig{
			GeminiAPIKey: "test-key",
			ModelName:    "test-image-model",
			BaseURL:      baseURL,
		},
		Generation: config.GenerationConfig{
			MaxAttempts:   2,
			BackoffBaseMS: 0,
			StyleKeywords: prompt.DefaultStyleKeywords,
		},
		Layout: config.LayoutConfig{Columns: 3, Rows: 2},
	}
}

func newTestApp(t *testing.T, baseURL string) *application {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), testConfig(baseURL), logger)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestApplication_EndToEnd(t *testing.T) {
	gemini, calls := newFakeGemini(t, "Mercury")
	app := newTestApp(t, gemini.URL)
	router := app.setupRouter()

	w := serve(router, http.MethodPost, "/api/deck",
		`{"vocabulary":"Sun: a star\nMercury: first planet\nnot a card\nMoon (crater sketch): satellite"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		return !app.deckService.Generating()
	}, 5*time.Second, 10*time.Millisecond)

	// Sun and Moon succeed on the first attempt; Mercury exhausts both attempts.
	assert.Equal(t, int32(4), calls.Load())

	w = serve(router, http.MethodGet, "/api/deck", "")
	require.Equal(t, http.StatusOK, w.Code)

	var deck struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
		Cards     []struct {
			Term   string `json:"term"`
			Image  string `json:"image"`
			Status string `json:"status"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deck))
	assert.Equal(t, 3, deck.Total)
	assert.Equal(t, 3, deck.Completed)
	require.Len(t, deck.Cards, 3)
	assert.Equal(t, "ready", deck.Cards[0].Status)
	assert.Equal(t, "failed", deck.Cards[1].Status)
	assert.Empty(t, deck.Cards[1].Image)
	assert.Equal(t, "Moon", deck.Cards[2].Term)
	assert.True(t, strings.HasPrefix(deck.Cards[2].Image, "data:image/png;base64,"))

	w = serve(router, http.MethodGet, "/api/export/archive", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"sun.png", "moon.png"}, names)

	w = serve(router, http.MethodGet, "/api/export/manifest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imageSrc": "N/A"`)

	w = serve(router, http.MethodGet, "/api/export/print", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first planet")
}

func TestApplication_RegenerateCard(t *testing.T) {
	gemini, calls := newFakeGemini(t, "")
	app := newTestApp(t, gemini.URL)
	router := app.setupRouter()

	w := serve(router, http.MethodPost, "/api/deck", `{"vocabulary":"Sun: a star"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Eventually(t, func() bool {
		return !app.deckService.Generating()
	}, 5*time.Second, 10*time.Millisecond)

	w = serve(router, http.MethodPost, "/api/cards/Sun/regenerate", `{"hint":"oil painting"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"custom_prompt":"oil painting"`)
	assert.Equal(t, int32(2), calls.Load())

	w = serve(router, http.MethodPost, "/api/cards/Pluto/regenerate", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplication_MissingCredential(t *testing.T) {
	gemini, calls := newFakeGemini(t, "")
	cfg := testConfig(gemini.URL)
	cfg.LLM.GeminiAPIKey = ""

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	w := serve(app.setupRouter(), http.MethodPost, "/api/deck", `{"vocabulary":"Sun: a star"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), calls.Load())
}

func TestApplication_InvalidLayout(t *testing.T) {
	cfg := testConfig("")
	cfg.Layout.Columns = 0

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	_, err := newApplication(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid layout configuration")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "")
	w := serve(app.setupRouter(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	_, err := loadAppConfig("/nonexistent/cardgen.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
