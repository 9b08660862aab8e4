package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockBackend is a Backend whose behavior is set per test.
type MockBackend struct {
	mu             sync.Mutex
	calls          []ImageRequest
	RequestImageFn func(ctx context.Context, req ImageRequest, call int) (*Image, error)
}

// RequestImage implements Backend
func (m *MockBackend) RequestImage(ctx context.Context, req ImageRequest) (*Image, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	call := len(m.calls)
	m.mu.Unlock()

	if m.RequestImageFn != nil {
		return m.RequestImageFn(ctx, req, call)
	}
	return &Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

func (m *MockBackend) Calls() []ImageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImageRequest(nil), m.calls...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, backend Backend, base time.Duration) (*Client, *[]time.Duration) {
	t.Helper()

	client, err := NewClient(backend, prompt.NewSynthesizer(nil), ClientConfig{
		MaxAttempts:  3,
		BackoffBase:  base,
		DefaultModel: "image-model",
	}, testLogger())
	require.NoError(t, err)

	var delays []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return client, &delays
}

var (
	testCard  = domain.Card{Term: "cat", Definition: "a feline", CustomPrompt: "orange tabby"}
	testCreds = Credentials{APIKey: "test-key"}
)

func TestClient_Generate_Success(t *testing.T) {
	backend := &MockBackend{}
	client, delays := newTestClient(t, backend, time.Second)

	image, err := client.Generate(context.Background(), testCard, Request{Credentials: testCreds})

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cG5n", image)
	assert.Empty(t, *delays)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "image-model", calls[0].Model)
	assert.Equal(t, "test-key", calls[0].APIKey)
	assert.Contains(t, calls[0].Prompt, "clipart icon of cat described as orange tabby")
	assert.Contains(t, calls[0].Prompt, calls[0].NegativePrompt)
}

func TestClient_Generate_RequestModelOverridesDefault(t *testing.T) {
	backend := &MockBackend{}
	client, _ := newTestClient(t, backend, time.Second)

	_, err := client.Generate(context.Background(), testCard, Request{
		Style:       "watercolor",
		Credentials: Credentials{APIKey: "k", Model: "other-model"},
	})

	require.NoError(t, err)
	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "other-model", calls[0].Model)
	assert.Contains(t, calls[0].Prompt, "overarching style of watercolor")
}

func TestClient_Generate_SucceedsOnThirdAttempt(t *testing.T) {
	backend := &MockBackend{
		RequestImageFn: func(ctx context.Context, req ImageRequest, call int) (*Image, error) {
			if call < 3 {
				return nil, errors.New("503 service unavailable")
			}
			return &Image{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}, nil
		},
	}
	client, delays := newTestClient(t, backend, time.Second)

	image, err := client.Generate(context.Background(), testCard, Request{Credentials: testCreds})

	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AQID", image)
	assert.Len(t, backend.Calls(), 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestClient_Generate_ExhaustsBudget(t *testing.T) {
	backend := &MockBackend{
		RequestImageFn: func(ctx context.Context, req ImageRequest, call int) (*Image, error) {
			return nil, errors.New("boom")
		},
	}
	client, delays := newTestClient(t, backend, time.Second)

	image, err := client.Generate(context.Background(), testCard, Request{Credentials: testCreds})

	require.Error(t, err)
	assert.Empty(t, image)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrTransportFailure)
	assert.Len(t, backend.Calls(), 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays,
		"no wait after the final attempt")
}

func TestClient_Generate_MissingImageDataIsRetried(t *testing.T) {
	backend := &MockBackend{
		RequestImageFn: func(ctx context.Context, req ImageRequest, call int) (*Image, error) {
			switch call {
			case 1:
				return nil, nil
			case 2:
				return &Image{MIMEType: "image/png"}, nil
			default:
				return &Image{Data: []byte("ok"), MIMEType: "image/png"}, nil
			}
		},
	}
	client, _ := newTestClient(t, backend, time.Millisecond)

	image, err := client.Generate(context.Background(), testCard, Request{Credentials: testCreds})

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,b2s=", image)
	assert.Len(t, backend.Calls(), 3)
}

func TestClient_Generate_MissingCredential(t *testing.T) {
	backend := &MockBackend{}
	client, delays := newTestClient(t, backend, time.Second)

	for _, key := range []string{"", "   "} {
		image, err := client.Generate(context.Background(), testCard, Request{
			Credentials: Credentials{APIKey: key},
		})

		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.NotErrorIs(t, err, ErrGenerationFailed)
		assert.Empty(t, image)
	}

	assert.Empty(t, backend.Calls(), "no network attempt without a credential")
	assert.Empty(t, *delays)
}

func TestClient_Generate_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := &MockBackend{
		RequestImageFn: func(ctx context.Context, req ImageRequest, call int) (*Image, error) {
			cancel()
			return nil, errors.New("first failure")
		},
	}
	client, err := NewClient(backend, nil, ClientConfig{MaxAttempts: 3, BackoffBase: time.Hour}, testLogger())
	require.NoError(t, err)

	_, err = client.Generate(ctx, testCard, Request{Credentials: testCreds})

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, backend.Calls(), 1)
}

func TestClient_Generate_RealBackoffElapsed(t *testing.T) {
	backend := &MockBackend{
		RequestImageFn: func(ctx context.Context, req ImageRequest, call int) (*Image, error) {
			return nil, errors.New("always failing")
		},
	}
	base := 20 * time.Millisecond
	client, err := NewClient(backend, nil, ClientConfig{MaxAttempts: 3, BackoffBase: base}, testLogger())
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Generate(context.Background(), testCard, Request{Credentials: testCreds})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.GreaterOrEqual(t, elapsed, base*1+base*2)
}

func TestNewClient(t *testing.T) {
	t.Run("nil_backend", func(t *testing.T) {
		client, err := NewClient(nil, nil, DefaultClientConfig(), testLogger())
		assert.Nil(t, client)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil_logger", func(t *testing.T) {
		client, err := NewClient(&MockBackend{}, nil, DefaultClientConfig(), nil)
		assert.Nil(t, client)
		assert.EqualError(t, err, "logger cannot be nil")
	})

	t.Run("invalid_retry_settings_use_defaults", func(t *testing.T) {
		client, err := NewClient(&MockBackend{}, nil, ClientConfig{MaxAttempts: 0, BackoffBase: -time.Second}, testLogger())
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxAttempts, client.config.MaxAttempts)
		assert.Equal(t, DefaultBackoffBase, client.config.BackoffBase)
		assert.NotNil(t, client.synthesizer)
	})
}

func TestImage_DataURI(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQ==", Image{Data: []byte{1}}.DataURI())
	assert.Equal(t, "data:image/webp;base64,AQ==", Image{Data: []byte{1}, MIMEType: "image/webp"}.DataURI())
}
