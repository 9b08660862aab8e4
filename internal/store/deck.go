package store

import (
	"github.com/google/uuid"
	"github.com/phrazzld/cardgen/internal/domain"
)

// CardStatus is the presentation state of a card slot. It is derived from the
// slot, not stored on the domain card.
type CardStatus string

// Possible card statuses
const (
	CardStatusPending CardStatus = "pending"
	CardStatusReady   CardStatus = "ready"
	CardStatusFailed  CardStatus = "failed"
)

// Entry is one card of a snapshot together with its deck position and status.
type Entry struct {
	Index  int         `json:"index"`
	Card   domain.Card `json:"card"`
	Status CardStatus  `json:"status"`
}

// Snapshot is a consistent copy of the deck at one point in time.
type Snapshot struct {
	GenerationID uuid.UUID `json:"generation_id"`
	Style        string    `json:"style,omitempty"`
	Entries      []Entry   `json:"entries"`
}

// Cards returns the snapshot's cards in deck order.
func (s Snapshot) Cards() []domain.Card {
	cards := make([]domain.Card, len(s.Entries))
	for i, e := range s.Entries {
		cards[i] = e.Card
	}
	return cards
}

// Len returns the number of cards in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// DeckStore holds the ordered cards of the current deck.
//
// Every Replace mints a new generation id. Writes carry the id they were
// started under, and writes whose id no longer matches are rejected with
// ErrStaleGeneration so an old batch can never touch a new deck.
// Version: 1.0
type DeckStore interface {
	// Replace discards the current deck and installs cards in the given order,
	// all marked pending. It returns the new generation id.
	Replace(cards []domain.Card, style string) (uuid.UUID, error)

	// Snapshot returns a copy of the current deck.
	Snapshot() Snapshot

	// GenerationID returns the id of the current deck.
	GenerationID() uuid.UUID

	// Len returns the number of cards in the current deck.
	Len() int

	// FindByTerm returns the index and card of the first card whose term equals
	// term, along with the current generation id.
	// Returns ErrCardNotFound if no card matches.
	FindByTerm(term string) (int, domain.Card, uuid.UUID, error)

	// BeginRegeneration marks the card at index pending and, when hint is not
	// nil, replaces its custom prompt. It returns the updated card.
	BeginRegeneration(generationID uuid.UUID, index int, hint *string) (domain.Card, error)

	// SetImage records the outcome of a generation for the card at index.
	// An empty image records a failure.
	SetImage(generationID uuid.UUID, index int, image string) error
}
