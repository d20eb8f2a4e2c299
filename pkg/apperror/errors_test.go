package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"config", NewConfigError("AZURE_OPENAI_ENDPOINT"), ErrConfig},
		{"provider status", NewProviderError("azure", 429, "rate limited"), ErrProvider},
		{"provider transport", WrapProviderError("azure", errors.New("dial tcp")), ErrProvider},
		{"not found", NoEmbeddedChunks(), ErrNotFound},
		{"extraction", &ExtractionError{ExitCode: 2, Diagnostic: "bad pdf"}, ErrExtraction},
		{"invalid input", InvalidInput("size must be positive"), ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestProviderError_CarriesStatusAndBody(t *testing.T) {
	err := fmt.Errorf("embed: %w", NewProviderError("azure", 401, `{"error":"denied"}`))

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 401, perr.Status)
	assert.Equal(t, `{"error":"denied"}`, perr.Body)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNoEmbeddedChunks_Message(t *testing.T) {
	assert.Equal(t, "No embedded chunks found for this document. Please re-index.", NoEmbeddedChunks().Error())
}

func TestExtractionError_Message(t *testing.T) {
	err := &ExtractionError{ExitCode: 2, Diagnostic: "Traceback: broken xref"}
	assert.Contains(t, err.Error(), "exit code 2")
	assert.Contains(t, err.Error(), "broken xref")
}
