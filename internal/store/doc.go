// Package store defines the interface of the deck card store, the single
// shared mutable state of a generation cycle. It keeps callers independent of
// the concrete implementation, which lives under internal/platform.
package store
