package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/store"
)

// slot is one card position plus whether a generation for it is in flight.
type slot struct {
	card    domain.Card
	pending bool
}

// DeckStore implements store.DeckStore in memory.
type DeckStore struct {
	mu           sync.RWMutex
	generationID uuid.UUID
	style        string
	slots        []slot
}

var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates an empty deck store.
func NewDeckStore() *DeckStore {
	return &DeckStore{}
}

// Replace implements store.DeckStore.
func (s *DeckStore) Replace(cards []domain.Card, style string) (uuid.UUID, error) {
	slots := make([]slot, len(cards))
	for i, card := range cards {
		if err := card.Validate(); err != nil {
			return uuid.Nil, fmt.Errorf("%w: card %d: %w", store.ErrInvalidEntity, i, err)
		}
		slots[i] = slot{card: card, pending: true}
	}

	id := uuid.New()

	s.mu.Lock()
	s.generationID = id
	s.style = strings.TrimSpace(style)
	s.slots = slots
	s.mu.Unlock()

	return id, nil
}

// Snapshot implements store.DeckStore.
func (s *DeckStore) Snapshot() store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]store.Entry, len(s.slots))
	for i, sl := range s.slots {
		entries[i] = store.Entry{
			Index:  i,
			Card:   sl.card,
			Status: statusOf(sl),
		}
	}

	return store.Snapshot{
		GenerationID: s.generationID,
		Style:        s.style,
		Entries:      entries,
	}
}

// GenerationID implements store.DeckStore.
func (s *DeckStore) GenerationID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generationID
}

// Len implements store.DeckStore.
func (s *DeckStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// FindByTerm implements store.DeckStore.
func (s *DeckStore) FindByTerm(term string) (int, domain.Card, uuid.UUID, error) {
	term = strings.TrimSpace(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, sl := range s.slots {
		if sl.card.Term == term {
			return i, sl.card, s.generationID, nil
		}
	}

	return -1, domain.Card{}, s.generationID, fmt.Errorf("%w: %q", store.ErrCardNotFound, term)
}

// BeginRegeneration implements store.DeckStore.
func (s *DeckStore) BeginRegeneration(generationID uuid.UUID, index int, hint *string) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWrite("begin_regeneration", generationID, index); err != nil {
		return domain.Card{}, err
	}

	sl := &s.slots[index]
	if hint != nil {
		sl.card.CustomPrompt = strings.TrimSpace(*hint)
	}
	sl.pending = true

	return sl.card, nil
}

// SetImage implements store.DeckStore.
func (s *DeckStore) SetImage(generationID uuid.UUID, index int, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWrite("set_image", generationID, index); err != nil {
		return err
	}

	s.slots[index].card.Image = image
	s.slots[index].pending = false

	return nil
}

// checkWrite must be called with the write lock held.
func (s *DeckStore) checkWrite(op string, generationID uuid.UUID, index int) error {
	if generationID != s.generationID {
		return store.NewStoreError("card", op,
			fmt.Sprintf("generation %s replaced by %s", generationID, s.generationID),
			store.ErrStaleGeneration)
	}

	if index < 0 || index >= len(s.slots) {
		return store.NewStoreError("card", op,
			fmt.Sprintf("index %d, deck size %d", index, len(s.slots)),
			store.ErrIndexOutOfRange)
	}

	return nil
}

func statusOf(sl slot) store.CardStatus {
	switch {
	case sl.pending:
		return store.CardStatusPending
	case sl.card.HasImage():
		return store.CardStatusReady
	default:
		return store.CardStatusFailed
	}
}
