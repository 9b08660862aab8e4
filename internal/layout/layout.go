package layout

import (
	"errors"
	"fmt"
)

// Default grid: 3 columns x 2 rows, 6 cards per page.
const (
	DefaultColumns = 3
	DefaultRows    = 2
)

// ErrInvalidGrid is returned when a grid has non-positive dimensions.
var ErrInvalidGrid = errors.New("invalid page grid")

// Grid describes the card slots of one printed page. Columns is also the size
// of the runs reversed on the back side, so the two always agree.
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// DefaultGrid returns the standard 3x2 grid.
func DefaultGrid() Grid {
	return Grid{Columns: DefaultColumns, Rows: DefaultRows}
}

// NewGrid creates a grid, validating its dimensions.
func NewGrid(columns, rows int) (Grid, error) {
	g := Grid{Columns: columns, Rows: rows}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Validate checks that both dimensions are positive.
func (g Grid) Validate() error {
	if g.Columns <= 0 || g.Rows <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.Columns, g.Rows)
	}
	return nil
}

// PageSize is the number of cards one page holds.
func (g Grid) PageSize() int {
	return g.Columns * g.Rows
}

// Page is a derived view over a contiguous range of deck indices.
type Page struct {
	// Number is the zero-based page index.
	Number int `json:"number"`
	// Start is the first deck index on the page; End is one past the last.
	Start int `json:"start"`
	End   int `json:"end"`
	// Front lists deck indices in printing order for the front side.
	Front []int `json:"front"`
	// Back lists deck indices in printing order for the back side.
	Back []int `json:"back"`
}

// Len returns the number of cards on the page.
func (p Page) Len() int {
	return p.End - p.Start
}

// PageCount returns how many pages a deck of n cards needs.
func (g Grid) PageCount(n int) int {
	size := g.PageSize()
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate splits a deck of n cards into pages. The last page may be short.
// An invalid grid falls back to DefaultGrid.
func (g Grid) Paginate(n int) []Page {
	if g.Validate() != nil {
		g = DefaultGrid()
	}

	count := g.PageCount(n)
	pages := make([]Page, 0, count)
	size := g.PageSize()

	for i := 0; i < count; i++ {
		start := i * size
		end := min(start+size, n)

		front := make([]int, 0, end-start)
		for idx := start; idx < end; idx++ {
			front = append(front, idx)
		}

		pages = append(pages, Page{
			Number: i,
			Start:  start,
			End:    end,
			Front:  front,
			Back:   MirrorRows(front, g.Columns),
		})
	}

	return pages
}

// MirrorRows groups order into consecutive runs of rowSize and reverses each
// run in place. A short final run is reversed as it is. The input is not
// modified.
func MirrorRows(order []int, rowSize int) []int {
	mirrored := make([]int, 0, len(order))
	if rowSize <= 0 {
		return append(mirrored, order...)
	}

	for i := 0; i < len(order); i += rowSize {
		end := min(i+rowSize, len(order))
		for j := end - 1; j >= i; j-- {
			mirrored = append(mirrored, order[j])
		}
	}

	return mirrored
}
