package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/phrazzld/cardgen/internal/domain"
)

// Credentials identify the caller to the image model.
type Credentials struct {
	APIKey string
	Model  string
}

// Validate checks the credential precondition.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingCredential
	}
	return nil
}

// Request carries the deck-level inputs of one card generation.
type Request struct {
	// Style is the optional deck-wide style descriptor.
	Style string
	// Credentials used for the call. An empty model uses the client default.
	Credentials Credentials
}

// ImageRequest is a single call to an image backend.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	APIKey         string
	Model          string
}

// Image is the payload returned by a backend.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the image as a data URI, the payload reference stored on cards.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(i.Data))
}

// Backend performs exactly one image request. Implementations must not retry.
type Backend interface {
	// RequestImage returns the generated image, or an error wrapping
	// ErrTransportFailure or ErrInvalidResponse.
	RequestImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// ImageGenerator generates the image for one card.
// This interface is the boundary between the orchestration layer and the
// image model, following the hexagonal architecture pattern.
type ImageGenerator interface {
	// Generate returns the image payload (a data URI) for card.
	//
	// Returns ErrMissingCredential without any network call when no API key
	// is set, and ErrGenerationFailed once the retry budget is exhausted.
	Generate(ctx context.Context, card domain.Card, req Request) (string, error)
}
