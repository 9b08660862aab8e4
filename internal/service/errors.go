package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Errors from the store and generation packages are wrapped, not replaced
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNoCards indicates that the vocabulary text produced no valid card.
	// The current deck is left untouched.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoCards = errors.New("no valid vocabulary lines")

	// ErrDeckEmpty indicates an operation that needs cards was invoked on an empty deck.
	// API layer should map this to HTTP 400 Bad Request.
	ErrDeckEmpty = errors.New("deck is empty")

	// ErrGenerationInProgress indicates a full-deck batch is still running.
	// API layer should map this to HTTP 409 Conflict.
	ErrGenerationInProgress = errors.New("deck generation in progress")

	// ErrServiceClosed is returned by operations invoked after Close.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrServiceClosed = errors.New("deck service closed")
)
