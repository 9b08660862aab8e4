// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, packages that
// depend on an image generator share the implementations here. Each mock
// exposes function fields for its interface methods and records its calls
// so tests can verify what was requested.
//
// Usage:
//
//	gen := &mocks.MockImageGenerator{
//	    GenerateFn: func(ctx context.Context, card domain.Card, req generation.Request) (string, error) {
//	        return "", generation.ErrGenerationFailed
//	    },
//	}
//
//	// Use the mock in your test...
//	assert.Equal(t, 1, gen.Calls())
package mocks
