package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/service"
	"github.com/phrazzld/cardgen/internal/vocab"
	"github.com/spf13/cobra"
)

type layoutOptions struct {
	input   string
	columns int
	rows    int
}

// newLayoutCmd builds the layout command.
func newLayoutCmd() *cobra.Command {
	opts := &layoutOptions{}
	def := layout.DefaultGrid()

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the page layout of a vocabulary file",
		Long: `Layout parses the vocabulary file and prints, page by page, the order in which
cards are printed on the front sheet and on the mirrored back sheet. No image
is requested.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "vocabulary file with one \"term: definition\" per line")
	flags.IntVar(&opts.columns, "columns", def.Columns, "cards per row")
	flags.IntVar(&opts.rows, "rows", def.Rows, "rows per page")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runLayout(out io.Writer, opts *layoutOptions) error {
	grid, err := layout.NewGrid(opts.columns, opts.rows)
	if err != nil {
		return err
	}

	vocabulary, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("error reading vocabulary: %w", err)
	}

	cards := vocab.Parse(string(vocabulary))
	if len(cards) == 0 {
		return service.ErrNoCards
	}

	fmt.Fprintf(out, "%d cards, %d pages of %d\n", len(cards), grid.PageCount(len(cards)), grid.PageSize())
	for _, page := range grid.Paginate(len(cards)) {
		fmt.Fprintf(out, "\n%s (cards %d-%d)\n",
			colorize.HiWhiteString("Page %d", page.Number+1), page.Start+1, page.End)
		printSide(out, colorize.CyanString("Front:"), page.Front, cards, grid.Columns)
		printSide(out, colorize.CyanString("Back: "), page.Back, cards, grid.Columns)
	}

	return nil
}

// printSide prints one side of a page, one grid row per line.
func printSide(out io.Writer, label string, order []int, cards []domain.Card, columns int) {
	for start := 0; start < len(order); start += columns {
		end := min(start+columns, len(order))

		terms := make([]string, 0, end-start)
		for _, idx := range order[start:end] {
			terms = append(terms, cards[idx].Term)
		}

		prefix := label
		if start > 0 {
			prefix = strings.Repeat(" ", len("Front:"))
		}
		fmt.Fprintf(out, "  %s %s\n", prefix, strings.Join(terms, " | "))
	}
}
