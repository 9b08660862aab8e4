package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/cardgen/internal/domain"
	"github.com/phrazzld/cardgen/internal/generation"
)

// DefaultImage is the data URI returned by MockImageGenerator when neither
// GenerateFn nor Image is set. It decodes to a PNG signature.
const DefaultImage = "data:image/png;base64,iVBORw0KGgo="

// MockImageGenerator implements generation.ImageGenerator for testing.
// It is safe for concurrent use.
type MockImageGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, card domain.Card, req generation.Request) (string, error)

	// Image is returned when GenerateFn is nil. Empty means DefaultImage.
	Image string

	// mu protects the call tracking state for concurrent card generation
	mu       sync.Mutex
	cards    []domain.Card
	requests []generation.Request
}

// Generate implements the generation.ImageGenerator interface
func (m *MockImageGenerator) Generate(ctx context.Context, card domain.Card, req generation.Request) (string, error) {
	m.mu.Lock()
	m.cards = append(m.cards, card)
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, card, req)
	}
	if m.Image != "" {
		return m.Image, nil
	}
	return DefaultImage, nil
}

// Calls returns the number of Generate invocations.
func (m *MockImageGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the request of the most recent call, or the zero
// Request if there was none.
func (m *MockImageGenerator) LastRequest() generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return generation.Request{}
	}
	return m.requests[len(m.requests)-1]
}

// Terms returns the term of every card passed to Generate, in call order.
func (m *MockImageGenerator) Terms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	terms := make([]string, len(m.cards))
	for i, c := range m.cards {
		terms[i] = c.Term
	}
	return terms
}
