package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/phrazzld/cardgen/internal/generation"
	"google.golang.org/genai"
)

// ImageBackend implements generation.Backend using the Gemini API.
type ImageBackend struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains connection settings
	config BackendConfig

	// clients caches one genai client per API key
	mu      sync.Mutex
	clients map[string]*genai.Client
}

var _ generation.Backend = (*ImageBackend)(nil)

// NewImageBackend creates a new ImageBackend.
func NewImageBackend(logger *slog.Logger, config BackendConfig) (*ImageBackend, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return &ImageBackend{
		logger:  logger,
		config:  config,
		clients: make(map[string]*genai.Client),
	}, nil
}

// RequestImage implements generation.Backend.
func (b *ImageBackend) RequestImage(ctx context.Context, req generation.ImageRequest) (*generation.Image, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, generation.ErrMissingCredential
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidConfig, ErrEmptyPrompt)
	}

	model := req.Model
	if model == "" {
		model = b.config.Model
	}

	client, err := b.client(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.GenerateContent(ctx, model,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{
			ResponseModalities: responseModalities,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %w", generation.ErrTransportFailure, err)
	}

	image, err := extractImage(resp)
	if err != nil {
		return nil, err
	}

	b.logger.DebugContext(ctx, "gemini image received",
		"model", model,
		"mime_type", image.MIMEType,
		"bytes", len(image.Data))

	return image, nil
}

// client returns the cached genai client for apiKey, creating it on first use.
func (b *ImageBackend) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.clients[apiKey]; ok {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: b.config.HTTPClient,
	}
	if b.config.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: b.config.BaseURL}
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %w", generation.ErrInvalidConfig, err)
	}

	b.clients[apiKey] = c
	return c, nil
}

// extractImage returns the first inline image of the first candidate.
func extractImage(resp *genai.GenerateContentResponse) (*generation.Image, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content (finish reason %q)", generation.ErrInvalidResponse, candidate.FinishReason)
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return &generation.Image{Data: part.InlineData.Data, MIMEType: mime}, nil
	}

	return nil, fmt.Errorf("%w: no inline image data", generation.ErrInvalidResponse)
}
