package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/store"
)

// CreateDeckRequest is the body of POST /api/deck.
type CreateDeckRequest struct {
	Vocabulary string `json:"vocabulary" validate:"required,max=200000"`
	Style      string `json:"style,omitempty" validate:"max=500"`
	APIKey     string `json:"api_key,omitempty"`
	Model      string `json:"model,omitempty" validate:"max=200"`
}

// RegenerateCardRequest is the body of POST /api/cards/{term}/regenerate.
// A nil Hint leaves the card's hint unchanged; an empty one clears it.
type RegenerateCardRequest struct {
	Hint   *string `json:"hint,omitempty" validate:"omitempty,max=500"`
	Style  *string `json:"style,omitempty" validate:"omitempty,max=500"`
	APIKey string  `json:"api_key,omitempty"`
	Model  string  `json:"model,omitempty" validate:"max=200"`
}

// CardResponse represents one card of the deck.
type CardResponse struct {
	Index        int              `json:"index"`
	Term         string           `json:"term"`
	Definition   string           `json:"definition"`
	CustomPrompt string           `json:"custom_prompt,omitempty"`
	Image        string           `json:"image,omitempty"`
	Status       store.CardStatus `json:"status"`
}

// DeckResponse represents the deck with its layout and generation progress.
type DeckResponse struct {
	GenerationID uuid.UUID      `json:"generation_id"`
	Generating   bool           `json:"generating"`
	Completed    int            `json:"completed"`
	Total        int            `json:"total"`
	Style        string         `json:"style,omitempty"`
	Cards        []CardResponse `json:"cards"`
	Pages        []layout.Page  `json:"pages"`
}

func entryToResponse(e store.Entry) CardResponse {
	return CardResponse{
		Index:        e.Index,
		Term:         e.Card.Term,
		Definition:   e.Card.Definition,
		CustomPrompt: e.Card.CustomPrompt,
		Image:        e.Card.Image,
		Status:       e.Status,
	}
}

func pendingCards(cards []domain.Card) []CardResponse {
	out := make([]CardResponse, len(cards))
	for i, c := range cards {
		out[i] = entryToResponse(store.Entry{Index: i, Card: c, Status: store.CardStatusPending})
	}
	return out
}
