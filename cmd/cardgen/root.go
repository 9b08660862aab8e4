package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the base command with every subcommand attached.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cardgen",
		Short: "Generate illustrated flashcard decks",
		Long: `Cardgen turns a vocabulary list of "term: definition" lines into a deck of
flashcards, illustrates every card with an AI image model and exports the deck
as an image archive, a JSON manifest and a printable double-sided HTML page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newLayoutCmd())

	return root
}
