package gemini

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newGeminiServer starts a fake Gemini endpoint answering every generateContent
// call with the given status and body, and records the last request.
func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Pointer[http.Request], *atomic.Pointer[string]) {
	t.Helper()

	var lastReq atomic.Pointer[http.Request]
	var lastBody atomic.Pointer[string]

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s := string(raw)
		lastBody.Store(&s)
		lastReq.Store(r.Clone(context.Background()))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &lastReq, &lastBody
}

func newTestBackend(t *testing.T, baseURL string) *ImageBackend {
	t.Helper()
	b, err := NewImageBackend(testLogger(), BackendConfig{BaseURL: baseURL, HTTPClient: http.DefaultClient})
	require.NoError(t, err)
	return b
}

const imageResponse = `{
  "candidates": [{
    "content": {
      "role": "model",
      "parts": [
        {"text": "Here is your image"},
        {"inlineData": {"mimeType": "image/png", "data": "iVBORw0KGgo="}}
      ]
    },
    "finishReason": "STOP"
  }]
}`

func TestNewImageBackend(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		b, err := NewImageBackend(nil, BackendConfig{})
		assert.Error(t, err)
		assert.Nil(t, b)
	})

	t.Run("defaults", func(t *testing.T) {
		b, err := NewImageBackend(testLogger(), BackendConfig{})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, b.config.Model)
		require.NotNil(t, b.config.HTTPClient)
		assert.Equal(t, DefaultRequestTimeout, b.config.HTTPClient.Timeout)
	})
}

func TestRequestImage_Success(t *testing.T) {
	srv, lastReq, lastBody := newGeminiServer(t, http.StatusOK, imageResponse)
	b := newTestBackend(t, srv.URL)

	img, err := b.RequestImage(context.Background(), generation.ImageRequest{
		Prompt: "A cat. Do not spell the word \"cat\".",
		APIKey: "test-key",
		Model:  "custom-model",
	})
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, img.Data)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", img.DataURI())

	req := lastReq.Load()
	require.NotNil(t, req)
	assert.Contains(t, req.URL.Path, "custom-model:generateContent")
	assert.Equal(t, "test-key", req.Header.Get("x-goog-api-key"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(*lastBody.Load()), &payload))
	assert.Contains(t, *lastBody.Load(), "Do not spell the word")
	assert.Contains(t, *lastBody.Load(), "IMAGE")
}

func TestRequestImage_DefaultModel(t *testing.T) {
	srv, lastReq, _ := newGeminiServer(t, http.StatusOK, imageResponse)
	b := newTestBackend(t, srv.URL)

	_, err := b.RequestImage(context.Background(), generation.ImageRequest{Prompt: "p", APIKey: "k"})
	require.NoError(t, err)
	assert.Contains(t, lastReq.Load().URL.Path, DefaultModel+":generateContent")
}

func TestRequestImage_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "no inline data",
			status:  http.StatusOK,
			body:    `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			status:  http.StatusOK,
			body:    `{"candidates":[]}`,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "empty content",
			status:  http.StatusOK,
			body:    `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "client error status",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`,
			wantErr: generation.ErrTransportFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newGeminiServer(t, tt.status, tt.body)
			b := newTestBackend(t, srv.URL)

			img, err := b.RequestImage(context.Background(), generation.ImageRequest{Prompt: "p", APIKey: "k"})
			assert.Nil(t, img)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequestImage_Preconditions(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	b := newTestBackend(t, srv.URL)

	_, err := b.RequestImage(context.Background(), generation.ImageRequest{Prompt: "p", APIKey: "  "})
	assert.ErrorIs(t, err, generation.ErrMissingCredential)

	_, err = b.RequestImage(context.Background(), generation.ImageRequest{Prompt: " ", APIKey: "k"})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	assert.Zero(t, calls.Load())
}

func TestRequestImage_ClientCachedPerKey(t *testing.T) {
	srv, _, _ := newGeminiServer(t, http.StatusOK, imageResponse)
	b := newTestBackend(t, srv.URL)

	for _, key := range []string{"a", "b", "a"} {
		_, err := b.RequestImage(context.Background(), generation.ImageRequest{Prompt: "p", APIKey: key})
		require.NoError(t, err)
	}
	assert.Len(t, b.clients, 2)
}

func TestExtractImage_DefaultMIME(t *testing.T) {
	srv, _, _ := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"inlineData":{"data":"AAEC"}}]}}]}`)
	b := newTestBackend(t, srv.URL)

	img, err := b.RequestImage(context.Background(), generation.ImageRequest{Prompt: "p", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/png;base64,"))
}
