package export

import "errors"

var (
	// ErrEmptyDeck is returned when there are no cards to export.
	ErrEmptyDeck = errors.New("no flashcard data to export")

	// ErrNoImages is returned by WriteArchive when no card has an exportable image.
	ErrNoImages = errors.New("no generated images to export")
)
