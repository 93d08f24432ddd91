package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrCollectionNotFound", ErrCollectionNotFound},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrModelMismatch", ErrModelMismatch},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrGenerationUnavailable", ErrGenerationUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrCollectionNotFound, ErrIndexUnavailable))
	assert.False(t, errors.Is(ErrGenerationUnavailable, ErrEmbeddingUnavailable))
	assert.False(t, errors.Is(ErrConfiguration, ErrInvalidInput))
}

func TestErrors_Wrapping(t *testing.T) {
	err := fmt.Errorf("%w: collection %q", ErrCollectionNotFound, "medical_faqs")

	assert.True(t, errors.Is(err, ErrCollectionNotFound))
	assert.Contains(t, err.Error(), "medical_faqs")

	joined := fmt.Errorf("%w: %w", ErrConfiguration, errors.New("openai: API key is required"))
	assert.True(t, errors.Is(joined, ErrConfiguration))
	assert.Contains(t, joined.Error(), "API key is required")
}
