package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/phrazzld/cardgen/internal/events"
	"github.com/phrazzld/cardgen/internal/platform/logger"
)

const (
	sseChannelBuffer = 64
	sseHeartbeat     = 30 * time.Second
)

// sseMessage is one pre-encoded Server-Sent Event.
type sseMessage struct {
	event string
	data  []byte
}

// sseClient represents a single SSE connection.
type sseClient struct {
	ch chan sseMessage
}

// Broadcaster fans progress events out to SSE clients. It implements
// events.EventHandler so it can be registered on the service's emitter.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	closed  bool

	// progress produces the snapshot sent to a client on connect.
	progress  func() any
	heartbeat time.Duration
	logger    *slog.Logger
}

var _ events.EventHandler = (*Broadcaster)(nil)

// NewBroadcaster creates an empty broadcaster. progress may be nil.
func NewBroadcaster(progress func() any, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		clients:   make(map[*sseClient]struct{}),
		progress:  progress,
		heartbeat: sseHeartbeat,
		logger:    logger.With(slog.String("component", "sse_broadcaster")),
	}
}

// HandleEvent implements events.EventHandler. Slow clients miss events
// rather than blocking generation.
func (b *Broadcaster) HandleEvent(_ context.Context, event *events.ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}
	b.broadcast(sseMessage{event: string(event.Type), data: data})
	return nil
}

func (b *Broadcaster) broadcast(msg sseMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.clients {
		select {
		case c.ch <- msg:
		default:
			b.logger.Debug("dropping event for slow client", "event", msg.event)
		}
	}
}

func (b *Broadcaster) register() (*sseClient, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false
	}
	c := &sseClient{ch: make(chan sseMessage, sseChannelBuffer)}
	b.clients[c] = struct{}{}
	return c, true
}

func (b *Broadcaster) unregister(c *sseClient) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every client and refuses new ones. Streams end, which
// lets the HTTP server shut down.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for c := range b.clients {
		delete(b.clients, c)
		close(c.ch)
	}
}

// ServeHTTP handles GET /api/deck/events.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), b.logger)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	c, ok := b.register()
	if !ok {
		http.Error(w, "Service is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.unregister(c)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if b.progress != nil {
		if data, err := json.Marshal(b.progress()); err == nil {
			writeEvent(w, sseMessage{event: "progress", data: data})
		}
	}
	flusher.Flush()

	log.Debug("sse client connected", "clients", b.ClientCount())

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			writeEvent(w, msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, msg sseMessage) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
}
