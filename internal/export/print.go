package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/layout"
)

// PrintName is the file name offered for the printable document.
const PrintName = "flashcards.html"

// Palette holds the card accent colors, cycled by deck index.
var Palette = []string{
	"#22c55e",
	"#3b82f6",
	"#f97316",
	"#ef4444",
	"#8b5cf6",
	"#06b6d4",
	"#ec4899",
	"#4f46e5",
}

//go:embed templates/print.html.tmpl
var templateFS embed.FS

var printTemplate = template.Must(template.ParseFS(templateFS, "templates/print.html.tmpl"))

// ColorFor returns the accent color of the card at a deck index.
func ColorFor(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// rgb renders a "#rrggbb" color as "r, g, b".
func rgb(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "0, 0, 0"
	}
	parts := make([]string, 0, 3)
	for i := 0; i < 6; i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return "0, 0, 0"
		}
		parts = append(parts, strconv.FormatUint(v, 10))
	}
	return strings.Join(parts, ", ")
}

// printCard is the template view of one card face.
type printCard struct {
	Index      int
	Term       string
	Definition string
	Image      template.URL
	HasImage   bool
	Color      string
	FrontStyle template.CSS
	LabelStyle template.CSS
	BackStyle  template.CSS
	RuleStyle  template.CSS
}

type printPage struct {
	Number int
	Front  []printCard
	Back   []printCard
}

type printView struct {
	Columns int
	Rows    int
	Total   int
	Pages   []printPage
}

// RenderPrint writes a printable HTML document for cards to w. Every page of
// the grid produces a front sheet in deck order followed by a back sheet in
// mirrored order, so duplex printing lines each definition up behind its
// image.
//
// Returns ErrEmptyDeck when there are no cards.
func RenderPrint(w io.Writer, cards []domain.Card, grid layout.Grid) error {
	if len(cards) == 0 {
		return ErrEmptyDeck
	}
	if err := grid.Validate(); err != nil {
		return err
	}

	views := make([]printCard, len(cards))
	for i, card := range cards {
		views[i] = newPrintCard(i, card)
	}

	pages := grid.Paginate(len(cards))
	view := printView{
		Columns: grid.Columns,
		Rows:    grid.Rows,
		Total:   len(cards),
		Pages:   make([]printPage, 0, len(pages)),
	}

	for _, p := range pages {
		pp := printPage{Number: p.Number + 1}
		for _, idx := range p.Front {
			pp.Front = append(pp.Front, views[idx])
		}
		for _, idx := range p.Back {
			pp.Back = append(pp.Back, views[idx])
		}
		view.Pages = append(view.Pages, pp)
	}

	if err := printTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render print document: %w", err)
	}

	return nil
}

func newPrintCard(index int, card domain.Card) printCard {
	color := ColorFor(index)
	c := printCard{
		Index:      index,
		Term:       card.Term,
		Definition: card.Definition,
		Color:      color,
		FrontStyle: template.CSS("border-color: " + color),
		LabelStyle: template.CSS("background-color: " + color),
		BackStyle: template.CSS(fmt.Sprintf(
			"border-color: %s; background-image: radial-gradient(rgba(%s, 0.08) 1px, transparent 1px)",
			color, rgb(color))),
		RuleStyle: template.CSS(fmt.Sprintf("border-bottom: 2px solid rgba(%s, 0.2)", rgb(color))),
	}

	// Only image data URIs are trusted as URLs; anything else renders as missing.
	if strings.HasPrefix(card.Image, "data:image/") {
		c.Image = template.URL(card.Image)
		c.HasImage = true
	}

	return c
}
