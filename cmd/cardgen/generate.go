package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	colorize "github.com/fatih/color"
	"github.com/phrazzld/cardgen/internal/config"
	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/events"
	"github.com/phrazzld/cardgen/internal/export"
	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/platform/gemini"
	"github.com/phrazzld/cardgen/internal/platform/logger"
	"github.com/phrazzld/cardgen/internal/platform/memory"
	"github.com/phrazzld/cardgen/internal/prompt"
	"github.com/phrazzld/cardgen/internal/service"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	input       string
	style       string
	apiKey      string
	model       string
	outDir      string
	concurrency int
	verbose     bool
}

// newGenerateCmd builds the generate command.
func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and export an illustrated deck",
		Long: `Generate parses the vocabulary file, requests one illustration per card and
writes flashcard-images.zip, flashcard-data.json and flashcards.html into the
output directory. Cards whose illustration fails are kept without an image.

The API key and model default to the CARDGEN_LLM_GEMINI_API_KEY and
CARDGEN_LLM_MODEL_NAME settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "vocabulary file with one \"term: definition\" per line")
	flags.StringVarP(&opts.style, "style", "s", "", "deck-wide illustration style")
	flags.StringVar(&opts.apiKey, "api-key", "", "Gemini API key")
	flags.StringVar(&opts.model, "model", "", "image model name")
	flags.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "maximum in-flight image requests (0 = unbounded)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "write debug logs to stderr")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	vocabulary, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("error reading vocabulary: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-key") {
		cfg.LLM.GeminiAPIKey = opts.apiKey
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.ModelName = opts.model
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Generation.Concurrency = opts.concurrency
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.Setup(logger.LoggerConfig{Level: level, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	svc, err := newDeckService(cfg, log, newProgressPrinter(out))
	if err != nil {
		return err
	}
	defer svc.Close()

	batch, err := svc.GenerateDeck(cmd.Context(), service.DeckRequest{
		Vocabulary: string(vocabulary),
		Style:      opts.style,
		Credentials: generation.Credentials{
			APIKey: cfg.LLM.GeminiAPIKey,
			Model:  cfg.LLM.ModelName,
		},
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	cards := svc.Snapshot().Cards()
	illustrated := 0
	for _, card := range cards {
		if card.HasImage() {
			illustrated++
		}
	}
	fmt.Fprintf(out, "%s %d of %d cards illustrated\n",
		colorize.CyanString("Done:"), illustrated, batch.Total())

	return writeExports(out, opts.outDir, cards, svc.Grid())
}

// newDeckService wires the generation pipeline for a single CLI run.
func newDeckService(cfg *config.Config, log *slog.Logger, progress events.EventHandler) (*service.DeckService, error) {
	grid, err := layout.NewGrid(cfg.Layout.Columns, cfg.Layout.Rows)
	if err != nil {
		return nil, err
	}

	backend, err := gemini.NewImageBackend(log, gemini.BackendConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.ModelName,
	})
	if err != nil {
		return nil, err
	}

	client, err := generation.NewClient(
		backend,
		prompt.NewSynthesizer(cfg.Generation.StyleKeywords),
		generation.ClientConfig{
			MaxAttempts:  cfg.Generation.MaxAttempts,
			BackoffBase:  cfg.Generation.BackoffBase(),
			DefaultModel: cfg.LLM.ModelName,
		},
		log,
	)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(progress)

	return service.NewDeckService(memory.NewDeckStore(), client, emitter, grid, cfg.Generation.Concurrency, log)
}

// newProgressPrinter prints one line per resolved card. Events arrive from
// concurrent card goroutines.
func newProgressPrinter(w io.Writer) events.EventHandler {
	var mu sync.Mutex

	return events.HandlerFunc(func(_ context.Context, event *events.ProgressEvent) error {
		mu.Lock()
		defer mu.Unlock()

		switch event.Type {
		case events.BatchStarted:
			fmt.Fprintf(w, "Generating %d cards...\n", event.Total)
		case events.CardCompleted:
			mark := colorize.GreenString("ok")
			if !event.Succeeded {
				mark = colorize.RedString("failed")
			}
			fmt.Fprintf(w, "[%d/%d] %s %s\n", event.Completed, event.Total, event.Term, mark)
		}
		return nil
	})
}

// writeExports writes the manifest, the printable page and, when at least one
// card has an image, the image archive.
func writeExports(out io.Writer, dir string, cards []domain.Card, grid layout.Grid) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	var manifest bytes.Buffer
	if err := export.WriteManifest(&manifest, cards); err != nil {
		return err
	}
	if err := writeFile(out, dir, export.ManifestName, manifest.Bytes()); err != nil {
		return err
	}

	var page bytes.Buffer
	if err := export.RenderPrint(&page, cards, grid); err != nil {
		return err
	}
	if err := writeFile(out, dir, export.PrintName, page.Bytes()); err != nil {
		return err
	}

	var archive bytes.Buffer
	if _, err := export.WriteArchive(&archive, cards); err != nil {
		if errors.Is(err, export.ErrNoImages) {
			fmt.Fprintf(out, "%s no images to archive, skipping %s\n",
				colorize.YellowString("Warning:"), export.ArchiveName)
			return nil
		}
		return err
	}
	return writeFile(out, dir, export.ArchiveName, archive.Bytes())
}

func writeFile(out io.Writer, dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	fmt.Fprintf(out, "%s %s\n", colorize.CyanString("Wrote"), path)
	return nil
}
