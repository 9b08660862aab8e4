package export

import (
	"archive/zip"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/phrazzld/cardgen/internal/domain"
)

// ArchiveName is the file name offered for the image archive.
const ArchiveName = "flashcard-images.zip"

// unsafeNameChars matches everything not allowed in an archive entry name.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// imageExtensions maps the data URI prefixes accepted in an archive to the
// extension of their entry.
var imageExtensions = []struct {
	prefix string
	ext    string
}{
	{prefix: "data:image/png;base64,", ext: "png"},
	{prefix: "data:image/jpeg;base64,", ext: "jpg"},
}

// SafeName derives an archive entry stem from a term: every character
// outside [A-Za-z0-9] becomes an underscore and the result is lowercased.
func SafeName(term string) string {
	return strings.ToLower(unsafeNameChars.ReplaceAllString(term, "_"))
}

// ArchiveEntry is one image written to an archive.
type ArchiveEntry struct {
	Term string
	Name string
}

// WriteArchive writes a zip archive to w holding one image file per card
// whose image is a PNG or JPEG data URI. Cards without a usable image are
// skipped. Entries whose safe names collide get a numeric suffix.
//
// Returns ErrNoImages, without writing anything, when no card qualifies.
func WriteArchive(w io.Writer, cards []domain.Card) ([]ArchiveEntry, error) {
	type payload struct {
		entry ArchiveEntry
		data  []byte
	}

	used := make(map[string]bool)
	payloads := make([]payload, 0, len(cards))

	for _, card := range cards {
		data, ext, ok := decodeImage(card.Image)
		if !ok {
			continue
		}

		stem := SafeName(card.Term)
		name := stem + "." + ext
		for n := 2; used[name]; n++ {
			name = stem + "_" + strconv.Itoa(n) + "." + ext
		}
		used[name] = true

		payloads = append(payloads, payload{
			entry: ArchiveEntry{Term: card.Term, Name: name},
			data:  data,
		})
	}

	if len(payloads) == 0 {
		return nil, ErrNoImages
	}

	zw := zip.NewWriter(w)
	entries := make([]ArchiveEntry, 0, len(payloads))

	for _, p := range payloads {
		f, err := zw.Create(p.entry.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %q: %w", p.entry.Name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %q: %w", p.entry.Name, err)
		}
		entries = append(entries, p.entry)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return entries, nil
}

// decodeImage returns the bytes and extension of a PNG or JPEG data URI.
func decodeImage(image string) ([]byte, string, bool) {
	for _, ie := range imageExtensions {
		encoded, ok := strings.CutPrefix(image, ie.prefix)
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(data) == 0 {
			return nil, "", false
		}
		return data, ie.ext, true
	}
	return nil, "", false
}
