package gemini

import (
	"net/http"
	"time"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash-preview-image-generation"

// DefaultRequestTimeout bounds a single image request.
const DefaultRequestTimeout = 2 * time.Minute

// responseModalities requests an image; Gemini image models require TEXT to be
// allowed alongside IMAGE.
var responseModalities = []string{"TEXT", "IMAGE"}

// BackendConfig holds the connection settings of an ImageBackend.
type BackendConfig struct {
	// BaseURL overrides the Gemini API endpoint. Empty uses the SDK default.
	BaseURL string
	// Model is used when a request does not name one.
	Model string
	// HTTPClient is used for all requests. Nil creates one with DefaultRequestTimeout.
	HTTPClient *http.Client
}
