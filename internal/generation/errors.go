package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrMissingCredential is returned before any network call when no API key
	// was supplied. It is never retried.
	ErrMissingCredential = errors.New("missing image generation API key")

	// ErrTransportFailure is returned when one request attempt fails at the
	// transport level or with a non-success status. It is retried.
	ErrTransportFailure = errors.New("image request failed")

	// ErrInvalidResponse is returned when a response does not carry the expected
	// inline image data. It is retried.
	ErrInvalidResponse = errors.New("invalid response from image model")

	// ErrGenerationFailed is returned when every attempt for a card failed.
	ErrGenerationFailed = errors.New("image generation failed")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
