// Package gemini provides an implementation of the generation.Backend interface
// that uses Google's Gemini API to generate card images.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's generation policy to Google's external Gemini
// service. It performs exactly one request per call; retries and backoff are
// owned by generation.Client.
//
// Each request asks the model for an IMAGE response modality and extracts the
// first inline image blob from the first candidate. A response without inline
// image data is reported as generation.ErrInvalidResponse, any API or
// transport error as generation.ErrTransportFailure.
//
// The package depends on Google's google.golang.org/genai client library. The
// API key is supplied per request, so one genai client is kept per key.
package gemini
