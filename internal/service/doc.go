// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between the deck store (defined in
// internal/store), the image generator (internal/generation) and the layout
// engine to fulfill application features.
//
// The central use case is DeckService:
//
//  1. Full-deck generation:
//     - Parses vocabulary text and replaces the deck wholesale
//     - Exposes the page layout before any image exists
//     - Fans out one image request per card and isolates per-card failures
//     - Reports a monotonically increasing completed count through events
//
//  2. Single-card regeneration:
//     - Finds the first card with a term, optionally edits its hint
//     - Issues one image request and writes the result back
//
// Every deck replacement mints a generation id. Results are written back
// under the id they were started with, so a batch that outlives its deck
// cannot overwrite the cards of a newer one.
//
// The service layer depends on domain entities and the store and generation
// interfaces, never on specific infrastructure implementations.
package service
