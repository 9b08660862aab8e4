package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what a ProgressEvent reports.
type EventType string

const (
	// BatchStarted is emitted once the store has been replaced and the layout is known.
	BatchStarted EventType = "batch_started"
	// CardCompleted is emitted each time a card of a batch resolves, successfully or not.
	CardCompleted EventType = "card_completed"
	// BatchCompleted is emitted when every card of a batch has resolved.
	BatchCompleted EventType = "batch_completed"
	// CardRegenerated is emitted when a single-card regeneration finishes.
	CardRegenerated EventType = "card_regenerated"
)

// ProgressEvent reports progress of a deck generation.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type EventType `json:"type"`

	// GenerationID identifies the deck the event belongs to
	GenerationID uuid.UUID `json:"generation_id"`

	// Index and Term identify the card for card-level events; Index is -1 otherwise
	Index int    `json:"index"`
	Term  string `json:"term,omitempty"`

	// Succeeded is true when the card received an image
	Succeeded bool `json:"succeeded"`

	// Completed is the number of resolved cards in the batch, Total its size
	Completed int `json:"completed"`
	Total     int `json:"total"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewProgressEvent creates a batch-level event with no card attached.
func NewProgressEvent(eventType EventType, generationID uuid.UUID, completed, total int) *ProgressEvent {
	return &ProgressEvent{
		ID:           uuid.New(),
		Type:         eventType,
		GenerationID: generationID,
		Index:        -1,
		Completed:    completed,
		Total:        total,
		CreatedAt:    time.Now(),
	}
}

// ForCard attaches a card to the event and returns it.
func (e *ProgressEvent) ForCard(index int, term string, succeeded bool) *ProgressEvent {
	e.Index = index
	e.Term = term
	e.Succeeded = succeeded
	return e
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Handlers may be called concurrently and must not block for long.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *ProgressEvent) error { return nil }

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ProgressEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	return f(ctx, event)
}
