package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := map[string]error{
		"no valid vocabulary lines":   ErrNoCards,
		"deck is empty":               ErrDeckEmpty,
		"deck generation in progress": ErrGenerationInProgress,
		"deck service closed":         ErrServiceClosed,
	}

	for msg, err := range sentinels {
		t.Run(msg, func(t *testing.T) {
			assert.Equal(t, msg, err.Error())

			wrapped := fmt.Errorf("export: %w", err)
			assert.True(t, errors.Is(wrapped, err))

			for _, other := range sentinels {
				if other != err {
					assert.False(t, errors.Is(err, other))
				}
			}
		})
	}
}
