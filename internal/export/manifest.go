package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/phrazzld/cardgen/internal/domain"
)

// ManifestName is the file name offered for the JSON manifest.
const ManifestName = "flashcard-data.json"

// MissingImage is the imageSrc recorded for a card without an image.
const MissingImage = "N/A"

// ManifestEntry is one card of the manifest.
type ManifestEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	ImageSrc   string `json:"imageSrc"`
}

// BuildManifest returns one entry per card that has both a term and a
// definition, in deck order.
//
// Returns ErrEmptyDeck when no card qualifies.
func BuildManifest(cards []domain.Card) ([]ManifestEntry, error) {
	entries := make([]ManifestEntry, 0, len(cards))
	for _, card := range cards {
		if card.Term == "" || card.Definition == "" {
			continue
		}

		src := card.Image
		if src == "" {
			src = MissingImage
		}

		entries = append(entries, ManifestEntry{
			Term:       card.Term,
			Definition: card.Definition,
			ImageSrc:   src,
		})
	}

	if len(entries) == 0 {
		return nil, ErrEmptyDeck
	}

	return entries, nil
}

// WriteManifest writes the manifest of cards to w as indented JSON.
func WriteManifest(w io.Writer, cards []domain.Card) error {
	entries, err := BuildManifest(cards)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	return nil
}
