// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrCardTermEmpty is returned when a card has no term after trimming.
	ErrCardTermEmpty = errors.New("card term cannot be empty")

	// ErrCardDefinitionEmpty is returned when a card has no definition after trimming.
	ErrCardDefinitionEmpty = errors.New("card definition cannot be empty")
)
