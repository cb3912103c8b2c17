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
		{"ErrInvalidConfig", ErrInvalidConfig},
		{"ErrInvalidChunking", ErrInvalidChunking},
		{"ErrSourceData", ErrSourceData},
		{"ErrIndexNotFound", ErrIndexNotFound},
		{"ErrIndexCorrupt", ErrIndexCorrupt},
		{"ErrModelMismatch", ErrModelMismatch},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrInvalidConfig,
		ErrInvalidChunking,
		ErrSourceData,
		ErrIndexNotFound,
		ErrIndexCorrupt,
		ErrModelMismatch,
		ErrDimensionMismatch,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrVectorIndexUnavailable,
		ErrRateLimited,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load index: %w", ErrIndexCorrupt)

	assert.True(t, errors.Is(wrapped, ErrIndexCorrupt))
	assert.False(t, errors.Is(wrapped, ErrIndexNotFound))
	assert.Contains(t, wrapped.Error(), "index corrupt")
}

func TestErrors_ServiceErrors(t *testing.T) {
	serviceErrors := []error{
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrVectorIndexUnavailable,
	}

	for _, err := range serviceErrors {
		assert.Contains(t, err.Error(), "unavailable",
			"Service error %v should mention unavailable", err)
	}
}
