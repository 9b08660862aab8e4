package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/events"
	"github.com/phrazzld/cardgen/internal/generation"
	"github.com/phrazzld/cardgen/internal/layout"
	"github.com/phrazzld/cardgen/internal/redact"
	"github.com/phrazzld/cardgen/internal/store"
	"github.com/phrazzld/cardgen/internal/vocab"
	"golang.org/x/sync/errgroup"
)

// DeckRequest carries the inputs of a full-deck generation.
type DeckRequest struct {
	// Vocabulary is the raw multi-line "term: definition" text.
	Vocabulary string
	// Style is the optional deck-wide style descriptor.
	Style string
	// Credentials used for every image request of the batch.
	Credentials generation.Credentials
}

// RegenerateRequest carries the inputs of a single-card regeneration.
type RegenerateRequest struct {
	// Term selects the first card whose term matches exactly.
	Term string
	// Hint replaces the card's custom prompt when not nil. An empty string clears it.
	Hint *string
	// Style overrides the deck style when not nil.
	Style *string
	// Credentials used for the image request.
	Credentials generation.Credentials
}

// Progress describes the state of the most recent full-deck batch.
type Progress struct {
	GenerationID uuid.UUID `json:"generation_id"`
	Generating   bool      `json:"generating"`
	Completed    int       `json:"completed"`
	Total        int       `json:"total"`
}

// Batch is a started full-deck generation. Its layout is available
// immediately; images arrive as cards resolve.
type Batch struct {
	GenerationID uuid.UUID
	Cards        []domain.Card
	Pages        []layout.Page

	state *batchState
}

// Total returns the number of cards in the batch.
func (b *Batch) Total() int {
	return len(b.Cards)
}

// Completed returns the number of cards resolved so far.
func (b *Batch) Completed() int {
	return int(b.state.completed.Load())
}

// Done is closed once every card of the batch has resolved.
func (b *Batch) Done() <-chan struct{} {
	return b.state.done
}

// Wait blocks until the batch completes or ctx is done.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-b.state.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// batchState is the shared bookkeeping of one running batch.
type batchState struct {
	id        uuid.UUID
	total     int
	completed atomic.Int64
	done      chan struct{}
	cancel    context.CancelFunc
}

func (b *batchState) finished() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// DeckService orchestrates deck generation.
type DeckService struct {
	store       store.DeckStore
	generator   generation.ImageGenerator
	emitter     events.EventEmitter
	grid        layout.Grid
	concurrency int
	logger      *slog.Logger

	// ctx is cancelled by Close and bounds every background batch.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active *batchState
	closed bool
}

// NewDeckService creates a new DeckService.
// A concurrency of 0 leaves the number of in-flight image requests unbounded.
// It returns an error if any of the required dependencies are nil.
func NewDeckService(
	deckStore store.DeckStore,
	generator generation.ImageGenerator,
	emitter events.EventEmitter,
	grid layout.Grid,
	concurrency int,
	logger *slog.Logger,
) (*DeckService, error) {
	if deckStore == nil {
		return nil, fmt.Errorf("%w: store cannot be nil", domain.ErrValidation)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", domain.ErrValidation)
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency must not be negative, got %d", domain.ErrValidation, concurrency)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &DeckService{
		store:       deckStore,
		generator:   generator,
		emitter:     emitter,
		grid:        grid,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "deck_service")),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// StartDeck replaces the deck with the cards parsed from req.Vocabulary and
// starts generating their images in the background. It returns as soon as
// the deck and its layout exist.
//
// The batch is detached from ctx cancellation so it outlives the caller;
// Close or a later StartDeck stops it.
func (s *DeckService) StartDeck(ctx context.Context, req DeckRequest) (*Batch, error) {
	return s.start(context.WithoutCancel(ctx), req)
}

// GenerateDeck runs a full-deck generation and waits for every card to
// resolve. Cancelling ctx stops the batch.
func (s *DeckService) GenerateDeck(ctx context.Context, req DeckRequest) (*Batch, error) {
	batch, err := s.start(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := batch.Wait(ctx); err != nil {
		return batch, err
	}
	return batch, nil
}

func (s *DeckService) start(ctx context.Context, req DeckRequest) (*Batch, error) {
	if err := req.Credentials.Validate(); err != nil {
		return nil, err
	}

	cards := vocab.Parse(req.Vocabulary)
	if len(cards) == 0 {
		return nil, ErrNoCards
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}

	style := strings.TrimSpace(req.Style)
	genID, err := s.store.Replace(cards, style)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to replace deck: %w", err)
	}

	if prev := s.active; prev != nil && !prev.finished() {
		s.logger.InfoContext(ctx, "superseding running batch",
			"previous_generation_id", prev.id,
			"generation_id", genID)
		prev.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)

	state := &batchState{
		id:     genID,
		total:  len(cards),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.active = state
	s.wg.Add(1)
	s.mu.Unlock()

	batch := &Batch{
		GenerationID: genID,
		Cards:        cards,
		Pages:        s.grid.Paginate(len(cards)),
		state:        state,
	}

	s.logger.InfoContext(ctx, "deck generation started",
		"generation_id", genID,
		"total", len(cards),
		"pages", len(batch.Pages),
		"style", style)
	s.emit(ctx, events.NewProgressEvent(events.BatchStarted, genID, 0, len(cards)))

	genReq := generation.Request{Style: style, Credentials: req.Credentials}

	go func() {
		defer s.wg.Done()
		defer stop()
		defer cancel()
		s.run(runCtx, state, cards, genReq)
	}()

	return batch, nil
}

// run fans out one request per card and closes state.done when all resolved.
func (s *DeckService) run(ctx context.Context, state *batchState, cards []domain.Card, req generation.Request) {
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, card := range cards {
		g.Go(func() error {
			s.generateCard(ctx, state, i, card, req)
			return nil
		})
	}
	_ = g.Wait()

	close(state.done)

	s.logger.InfoContext(ctx, "deck generation completed",
		"generation_id", state.id,
		"total", state.total)
	s.emit(ctx, events.NewProgressEvent(events.BatchCompleted, state.id, state.total, state.total))
}

// generateCard resolves one card. Failures never propagate past the card.
func (s *DeckService) generateCard(ctx context.Context, state *batchState, index int, card domain.Card, req generation.Request) {
	image, err := s.generator.Generate(ctx, card, req)
	if err != nil {
		s.logger.WarnContext(ctx, "card generation failed",
			"generation_id", state.id,
			"index", index,
			"term", card.Term,
			"error", redact.Error(err))
		image = ""
	}

	if err := s.store.SetImage(state.id, index, image); err != nil {
		if errors.Is(err, store.ErrStaleGeneration) {
			s.logger.InfoContext(ctx, "discarding result for replaced deck",
				"generation_id", state.id,
				"index", index,
				"term", card.Term)
		} else {
			s.logger.ErrorContext(ctx, "failed to store card image",
				"generation_id", state.id,
				"index", index,
				"term", card.Term,
				"error", err)
		}
	}

	completed := int(state.completed.Add(1))
	s.logger.DebugContext(ctx, "card resolved",
		"generation_id", state.id,
		"term", card.Term,
		"succeeded", image != "",
		"completed", completed,
		"total", state.total)
	s.emit(ctx, events.NewProgressEvent(events.CardCompleted, state.id, completed, state.total).
		ForCard(index, card.Term, image != ""))
}

// RegenerateCard regenerates the image of the first card whose term matches
// req.Term. A failed generation is not an error: the returned entry carries
// an empty image and the failed status.
//
// Returns store.ErrCardNotFound for an unknown term and
// store.ErrStaleGeneration when the deck was replaced while the request ran.
func (s *DeckService) RegenerateCard(ctx context.Context, req RegenerateRequest) (store.Entry, error) {
	if err := req.Credentials.Validate(); err != nil {
		return store.Entry{}, err
	}
	if s.isClosed() {
		return store.Entry{}, ErrServiceClosed
	}

	index, _, genID, err := s.store.FindByTerm(req.Term)
	if err != nil {
		return store.Entry{}, err
	}

	card, err := s.store.BeginRegeneration(genID, index, req.Hint)
	if err != nil {
		return store.Entry{}, err
	}

	style := s.store.Snapshot().Style
	if req.Style != nil {
		style = strings.TrimSpace(*req.Style)
	}

	log := s.logger.With("generation_id", genID, "index", index, "term", card.Term)
	log.InfoContext(ctx, "regenerating card", "has_hint", card.HasCustomPrompt())

	image, genErr := s.generator.Generate(ctx, card, generation.Request{
		Style:       style,
		Credentials: req.Credentials,
	})
	if genErr != nil {
		log.WarnContext(ctx, "card regeneration failed", "error", redact.Error(genErr))
		image = ""
	}

	if err := s.store.SetImage(genID, index, image); err != nil {
		if errors.Is(err, store.ErrStaleGeneration) {
			log.InfoContext(ctx, "discarding regenerated image for replaced deck")
		}
		return store.Entry{}, err
	}

	card.Image = image
	entry := store.Entry{Index: index, Card: card, Status: store.CardStatusReady}
	if image == "" {
		entry.Status = store.CardStatusFailed
	}

	s.emit(ctx, events.NewProgressEvent(events.CardRegenerated, genID, 1, 1).ForCard(index, card.Term, image != ""))

	return entry, nil
}

// Snapshot returns a copy of the current deck.
func (s *DeckService) Snapshot() store.Snapshot {
	return s.store.Snapshot()
}

// Pages returns the layout of a deck of n cards.
func (s *DeckService) Pages(n int) []layout.Page {
	return s.grid.Paginate(n)
}

// Grid returns the page grid used for layouts.
func (s *DeckService) Grid() layout.Grid {
	return s.grid
}

// Progress reports on the most recent full-deck batch.
func (s *DeckService) Progress() Progress {
	s.mu.Lock()
	state := s.active
	s.mu.Unlock()

	if state == nil {
		return Progress{}
	}

	return Progress{
		GenerationID: state.id,
		Generating:   !state.finished(),
		Completed:    int(state.completed.Load()),
		Total:        state.total,
	}
}

// Generating reports whether a full-deck batch is still running.
func (s *DeckService) Generating() bool {
	return s.Progress().Generating
}

// Exportable returns the current deck when it can be exported: no batch is
// running and the deck has at least one card.
func (s *DeckService) Exportable() (store.Snapshot, error) {
	if s.Generating() {
		return store.Snapshot{}, ErrGenerationInProgress
	}

	snap := s.store.Snapshot()
	if snap.Len() == 0 {
		return store.Snapshot{}, ErrDeckEmpty
	}

	return snap, nil
}

// Close stops every running batch and waits for it to return.
func (s *DeckService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *DeckService) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *DeckService) emit(ctx context.Context, event *events.ProgressEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit progress event",
			"event_type", event.Type,
			"generation_id", event.GenerationID,
			"error", err)
	}
}
