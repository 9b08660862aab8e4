package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/export"
	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/phrazzld/cardgen/internal/service"
	"github.com/phrazzld/cardgen/internal/store"
)

// errInvalidRequest marks a request body that could not be decoded.
var errInvalidRequest = errors.New("invalid request body")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Precondition errors
	case errors.Is(err, generation.ErrMissingCredential),
		errors.Is(err, service.ErrNoCards),
		errors.Is(err, service.ErrDeckEmpty),
		errors.Is(err, export.ErrEmptyDeck),
		errors.Is(err, export.ErrNoImages),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrCardNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrStaleGeneration),
		errors.Is(err, store.ErrIndexOutOfRange),
		errors.Is(err, service.ErrGenerationInProgress):
		return http.StatusConflict

	case errors.Is(err, service.ErrServiceClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, generation.ErrMissingCredential):
		return "An API key is required"

	case errors.Is(err, service.ErrNoCards):
		return "No valid vocabulary lines found, expected \"term: definition\""

	case errors.Is(err, service.ErrDeckEmpty),
		errors.Is(err, export.ErrEmptyDeck):
		return "The deck is empty"

	case errors.Is(err, export.ErrNoImages):
		return "No generated images to export"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrStaleGeneration),
		errors.Is(err, store.ErrIndexOutOfRange):
		return "The deck was replaced while the request was running"

	case errors.Is(err, service.ErrGenerationInProgress):
		return "Deck generation is still in progress"

	case errors.Is(err, service.ErrServiceClosed):
		return "Service is shutting down"

	case errors.Is(err, errInvalidRequest):
		return "Invalid request body"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return SanitizeValidationError(err)

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateDeckRequest.Vocabulary' Error:Field validation for 'Vocabulary' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 && fieldParts[3] != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
