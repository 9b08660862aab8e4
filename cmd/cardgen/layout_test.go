package main

import (
	"testing"

	"github.com/phrazzld/cardgen/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutCommand(t *testing.T) {
	input := writeVocabulary(t, "A: a\nB: b\nC: c\nD: d\nE: e\nF: f\nG: g\n")

	out, err := execute(t, "layout", "--input", input)
	require.NoError(t, err)

	assert.Contains(t, out, "7 cards, 2 pages of 6")
	assert.Contains(t, out, "Page 1 (cards 1-6)")
	assert.Contains(t, out, "Front: A | B | C\n")
	assert.Contains(t, out, "       D | E | F\n")
	assert.Contains(t, out, "Back:  C | B | A\n")
	assert.Contains(t, out, "       F | E | D\n")
	assert.Contains(t, out, "Page 2 (cards 7-7)")
	assert.Contains(t, out, "Front: G\n")
	assert.Contains(t, out, "Back:  G\n")
}

func TestLayoutCommand_CustomGrid(t *testing.T) {
	input := writeVocabulary(t, "A: a\nB: b\nC: c\nD: d\nE: e\n")

	out, err := execute(t, "layout", "--input", input, "--columns", "2", "--rows", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "5 cards, 3 pages of 2")
	assert.Contains(t, out, "Back:  B | A\n")
	assert.Contains(t, out, "Back:  D | C\n")
	assert.Contains(t, out, "Front: E\n")
}

func TestLayoutCommand_Errors(t *testing.T) {
	t.Run("no valid lines", func(t *testing.T) {
		input := writeVocabulary(t, "no delimiter here\n: missing term\n")
		_, err := execute(t, "layout", "--input", input)
		assert.ErrorIs(t, err, service.ErrNoCards)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "layout", "--input", t.TempDir()+"/absent.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading vocabulary")
	})

	t.Run("input flag required", func(t *testing.T) {
		_, err := execute(t, "layout")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})

	t.Run("invalid grid", func(t *testing.T) {
		input := writeVocabulary(t, "A: a\n")
		_, err := execute(t, "layout", "--input", input, "--columns", "0")
		require.Error(t, err)
	})
}
