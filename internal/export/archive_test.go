package export

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"testing"

	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func readArchive(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(data)
	}
	return files
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "chat", want: "chat"},
		{term: "Le Chat", want: "le_chat"},
		{term: "l'eau", want: "l_eau"},
		{term: "Ice-Cream 2", want: "ice_cream_2"},
		{term: "café", want: "caf_"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.term))
		})
	}
}

func TestWriteArchive(t *testing.T) {
	cards := []domain.Card{
		{Term: "Le Chat", Definition: "cat", Image: pngURI("cat-bytes")},
		{Term: "chien", Definition: "dog"},
		{Term: "eau", Definition: "water", Image: "https://example.com/water.png"},
		{Term: "pain", Definition: "bread", Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))},
		{Term: "broken", Definition: "x", Image: "data:image/png;base64,!!!not-base64"},
	}

	var buf bytes.Buffer
	entries, err := WriteArchive(&buf, cards)
	require.NoError(t, err)

	assert.Equal(t, []ArchiveEntry{
		{Term: "Le Chat", Name: "le_chat.png"},
		{Term: "pain", Name: "pain.jpg"},
	}, entries)

	files := readArchive(t, buf.Bytes())
	assert.Equal(t, map[string]string{
		"le_chat.png": "cat-bytes",
		"pain.jpg":    "jpeg-bytes",
	}, files)
}

func TestWriteArchive_DuplicateNames(t *testing.T) {
	cards := []domain.Card{
		{Term: "le chat", Definition: "a", Image: pngURI("one")},
		{Term: "le-chat", Definition: "b", Image: pngURI("two")},
		{Term: "le_chat_2", Definition: "c", Image: pngURI("three")},
	}

	var buf bytes.Buffer
	entries, err := WriteArchive(&buf, cards)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	files := readArchive(t, buf.Bytes())
	assert.Len(t, files, 3)
	assert.Equal(t, "one", files["le_chat.png"])
	assert.Equal(t, "two", files["le_chat_2.png"])
	assert.Equal(t, "three", files["le_chat_2_2.png"])
}

func TestWriteArchive_NoImages(t *testing.T) {
	tests := []struct {
		name  string
		cards []domain.Card
	}{
		{name: "empty deck"},
		{name: "no images", cards: []domain.Card{{Term: "a", Definition: "b"}}},
		{name: "non data uri", cards: []domain.Card{{Term: "a", Definition: "b", Image: "img.png"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			entries, err := WriteArchive(&buf, tt.cards)
			assert.ErrorIs(t, err, ErrNoImages)
			assert.Nil(t, entries)
			assert.Zero(t, buf.Len())
		})
	}
}
