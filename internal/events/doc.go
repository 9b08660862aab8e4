// Package events provides types and interfaces for deck progress notifications.
//
// The deck service emits a ProgressEvent whenever a batch starts, a card
// resolves, a batch finishes or a single card is regenerated. Delivery
// surfaces (the SSE stream, the CLI progress printer) register handlers
// without the service knowing about them.
//
// The primary components are:
// - ProgressEvent: a single progress notification
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
package events
