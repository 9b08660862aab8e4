// Package api handles incoming HTTP requests, request validation and response
// formatting for the deck generator. It acts as an adapter between HTTP
// clients and the deck service, translating HTTP concerns to business
// operations and business errors back to status codes.
//
// Handlers:
//   - DeckHandler: start a deck, read it back, regenerate a single card
//   - ExportHandler: zip archive, JSON manifest and printable HTML
//   - Broadcaster: Server-Sent Events stream of generation progress
package api
