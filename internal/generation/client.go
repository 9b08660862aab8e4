package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/prompt"
	"github.com/phrazzld/cardgen/internal/redact"
)

// Defaults for the retry budget.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
)

// ClientConfig holds the retry policy and default model of a Client.
type ClientConfig struct {
	// MaxAttempts is the total number of attempts per card, first one included.
	MaxAttempts int
	// BackoffBase is multiplied by the failed attempt number to get the wait
	// before the next attempt.
	BackoffBase time.Duration
	// DefaultModel is used when a request does not name a model.
	DefaultModel string
}

// DefaultClientConfig returns a ClientConfig with the standard retry budget.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
	}
}

// Client implements ImageGenerator on top of a single-shot Backend.
type Client struct {
	backend     Backend
	synthesizer *prompt.Synthesizer
	config      ClientConfig
	logger      *slog.Logger

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ImageGenerator = (*Client)(nil)

// NewClient creates a Client. Invalid retry settings fall back to defaults
// with a warning.
func NewClient(backend Backend, synthesizer *prompt.Synthesizer, config ClientConfig, logger *slog.Logger) (*Client, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if synthesizer == nil {
		synthesizer = prompt.NewSynthesizer(nil)
	}

	if config.MaxAttempts < 1 {
		logger.Warn("invalid max attempts value, using default",
			"configured", config.MaxAttempts,
			"default", DefaultMaxAttempts)
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BackoffBase < 0 {
		logger.Warn("invalid backoff base, using default",
			"configured", config.BackoffBase,
			"default", DefaultBackoffBase)
		config.BackoffBase = DefaultBackoffBase
	}

	return &Client{
		backend:     backend,
		synthesizer: synthesizer,
		config:      config,
		logger:      logger,
		sleep:       sleepContext,
	}, nil
}

// attemptState is a state of the retry machine:
// Attempting(n) -> Succeeded | Attempting(n+1) after a delay | Exhausted.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateSucceeded
	stateExhausted
)

// Generate implements ImageGenerator.
func (c *Client) Generate(ctx context.Context, card domain.Card, req Request) (string, error) {
	if err := req.Credentials.Validate(); err != nil {
		c.logger.WarnContext(ctx, "image request rejected before sending",
			"term", card.Term,
			"error", err)
		return "", err
	}

	p := c.synthesizer.Build(card.Term, card.CustomPrompt, req.Style)
	imageReq := ImageRequest{
		Prompt:         p.Text,
		NegativePrompt: p.NegativeConstraint,
		APIKey:         strings.TrimSpace(req.Credentials.APIKey),
		Model:          c.model(req.Credentials),
	}

	c.logger.DebugContext(ctx, "prompt synthesized",
		"term", card.Term,
		"branch", p.Branch,
		"prompt_length", len(p.Text))

	var (
		state   = stateAttempting
		attempt = 1
		image   *Image
		lastErr error
	)

	for state == stateAttempting {
		c.logger.InfoContext(ctx, "requesting card image",
			"term", card.Term,
			"attempt", attempt,
			"max_attempts", c.config.MaxAttempts)

		image, lastErr = c.attempt(ctx, imageReq)
		switch {
		case lastErr == nil:
			state = stateSucceeded

		case attempt >= c.config.MaxAttempts:
			state = stateExhausted

		default:
			delay := c.config.BackoffBase * time.Duration(attempt)
			c.logger.WarnContext(ctx, "image attempt failed, retrying after delay",
				"term", card.Term,
				"attempt", attempt,
				"delay_ms", delay.Milliseconds(),
				"error", redact.Error(lastErr))

			if err := c.sleep(ctx, delay); err != nil {
				lastErr = err
				state = stateExhausted
				break
			}
			attempt++
		}
	}

	if state == stateExhausted {
		c.logger.ErrorContext(ctx, "image generation failed",
			"term", card.Term,
			"attempts", attempt,
			"error", redact.Error(lastErr))
		return "", fmt.Errorf("%w: %q after %d attempts: %w", ErrGenerationFailed, card.Term, attempt, lastErr)
	}

	c.logger.InfoContext(ctx, "card image generated",
		"term", card.Term,
		"attempt", attempt,
		"mime_type", image.MIMEType,
		"bytes", len(image.Data))

	return image.DataURI(), nil
}

// attempt performs one backend call and classifies its outcome.
func (c *Client) attempt(ctx context.Context, req ImageRequest) (*Image, error) {
	image, err := c.backend.RequestImage(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrTransportFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: no inline image data", ErrInvalidResponse)
	}

	return image, nil
}

func (c *Client) model(creds Credentials) string {
	if m := strings.TrimSpace(creds.Model); m != "" {
		return m
	}
	return c.config.DefaultModel
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
