package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyPrompt is returned when a request carries no prompt text.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyModel is returned when neither the request nor the backend names a model.
	ErrEmptyModel = errors.New("model name cannot be empty")
)
