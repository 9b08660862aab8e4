package domain

import (
	"fmt"
	"strings"
)

// Card is one term/definition/image unit of a deck.
//
// Term and Definition are fixed once the card is parsed. CustomPrompt and
// Image are the only fields a regeneration may change. An empty Image means
// the card is either still pending or its generation failed; the card itself
// does not distinguish the two.
type Card struct {
	Term         string `json:"term"`
	Definition   string `json:"definition"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
	Image        string `json:"image,omitempty"`
}

// NewCard creates a Card from raw term, definition and hint values.
// All values are trimmed. Returns an error if the term or definition is empty.
func NewCard(term, definition, customPrompt string) (Card, error) {
	card := Card{
		Term:         strings.TrimSpace(term),
		Definition:   strings.TrimSpace(definition),
		CustomPrompt: strings.TrimSpace(customPrompt),
	}

	if err := card.Validate(); err != nil {
		return Card{}, err
	}

	return card, nil
}

// Validate checks that the card has a term and a definition.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Term) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrCardTermEmpty)
	}

	if strings.TrimSpace(c.Definition) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrCardDefinitionEmpty)
	}

	return nil
}

// HasImage reports whether an image has been generated for the card.
func (c Card) HasImage() bool {
	return c.Image != ""
}

// HasCustomPrompt reports whether the card carries a per-card hint.
func (c Card) HasCustomPrompt() bool {
	return c.CustomPrompt != ""
}
