package vocab

import (
	"regexp"
	"strings"

	"github.com/phrazzld/cardgen/internal/domain"
)

// Delimiter separates the term from the definition on a vocabulary line.
const Delimiter = ":"

// hintPattern matches "<term-text> (<hint-text>)" in the left side of a line.
var hintPattern = regexp.MustCompile(`(.*?)\s*\((.*?)\)`)

// Parse converts multi-line vocabulary text into an ordered slice of cards.
// The returned cards have no image. Malformed lines are excluded.
func Parse(text string) []domain.Card {
	lines := strings.Split(text, "\n")
	cards := make([]domain.Card, 0, len(lines))

	for _, line := range lines {
		card, ok := ParseLine(line)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}

	return cards
}

// ParseLine extracts a single card from one line. The second return value is
// false when the line does not qualify.
//
// Only the first delimiter splits the line; any further delimiters are kept
// verbatim in the definition.
func ParseLine(line string) (domain.Card, bool) {
	left, rest, found := strings.Cut(line, Delimiter)
	if !found {
		return domain.Card{}, false
	}

	term, hint := splitHint(strings.TrimSpace(left))

	card, err := domain.NewCard(term, rest, hint)
	if err != nil {
		return domain.Card{}, false
	}

	return card, true
}

// splitHint separates an optional parenthesized hint from the term text.
func splitHint(left string) (term, hint string) {
	match := hintPattern.FindStringSubmatch(left)
	if match == nil {
		return left, ""
	}
	return strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
}
