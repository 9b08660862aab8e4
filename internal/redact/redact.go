// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Image model errors can
// echo request URLs that carry the caller's API key, and card payloads are large
// base64 data URIs; both are replaced by short placeholders.
package redact

import (
	"regexp"
	"sync"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedImagePlaceholder      = "[REDACTED_IMAGE]"
)

// Precompiled regex patterns
var (
	// Inline image payloads
	dataURIRegex = regexp.MustCompile(`data:(image/[A-Za-z0-9.+-]+);base64,[A-Za-z0-9+/=]+`)

	// Google API keys, wherever they appear
	googleKeyRegex = regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`)

	// Keys passed as query parameters
	keyParamRegex = regexp.MustCompile(`(?i)([?&](?:key|api_key|apikey)=)[^&\s"']+`)

	// Credentials and tokens
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|x-goog-api-key|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]{8,}`)

	// File paths
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// Stack trace fragments
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)

	// All patterns in application order. Data URIs go first so their base64
	// body is never mistaken for a path or a key.
	patterns = []*regexp.Regexp{
		dataURIRegex, googleKeyRegex, keyParamRegex, apiKeyRegex, bearerRegex,
		unixPathRegex, winPathRegex, stackTraceRegex,
	}

	patternPlaceholders = map[*regexp.Regexp]string{
		dataURIRegex:    "data:${1};base64," + RedactedImagePlaceholder,
		googleKeyRegex:  RedactedKeyPlaceholder,
		keyParamRegex:   "${1}" + RedactedKeyPlaceholder,
		apiKeyRegex:     RedactedKeyPlaceholder,
		bearerRegex:     "Bearer " + RedactedCredentialPlaceholder,
		unixPathRegex:   RedactedPathPlaceholder,
		winPathRegex:    RedactedPathPlaceholder,
		stackTraceRegex: "[STACK_TRACE_REDACTED]",
	}

	mu sync.RWMutex
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	mu.RLock()
	defer mu.RUnlock()

	result := input
	for _, pattern := range patterns {
		placeholder := RedactionPlaceholder
		if ph, ok := patternPlaceholders[pattern]; ok {
			placeholder = ph
		}
		result = pattern.ReplaceAllString(result, placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
