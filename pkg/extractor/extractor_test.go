package extractor

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"chatdoc-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.name = name
	m.args = args
	return m.stdout, m.stderr, m.err
}

func TestCommandExtractor_Extract(t *testing.T) {
	runner := &mockRunner{stdout: []byte(`{"text":"Hello PDF"}` + "\n")}
	e := NewCommandExtractorWithRunner(Config{}, runner)

	text, err := e.Extract(context.Background(), "/tmp/a.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Hello PDF", text)
	assert.Equal(t, DefaultCommand, runner.name)
	assert.Equal(t, []string{DefaultScript, "/tmp/a.pdf"}, runner.args)
}

func TestCommandExtractor_EmptyText(t *testing.T) {
	e := NewCommandExtractorWithRunner(Config{}, &mockRunner{stdout: []byte(`{"text":""}`)})

	text, err := e.Extract(context.Background(), "a.pdf")

	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestCommandExtractor_Failures(t *testing.T) {
	tests := []struct {
		name       string
		runner     *mockRunner
		diagnostic string
	}{
		{"start failure", &mockRunner{err: errors.New("executable file not found")}, ""},
		{"stderr preferred", &mockRunner{stdout: []byte("noise"), stderr: []byte("Traceback: bad pdf\n"), err: errors.New("exit status 2")}, "Traceback: bad pdf"},
		{"stdout fallback", &mockRunner{stdout: []byte(`{"error":"cannot open"}`), err: errors.New("exit status 2")}, `{"error":"cannot open"}`},
		{"unparsable output", &mockRunner{stdout: []byte("not json")}, "not json"},
		{"error field", &mockRunner{stdout: []byte(`{"error":"encrypted file"}`)}, "encrypted file"},
		{"missing text", &mockRunner{stdout: []byte(`{}`)}, "extractor output has no text field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCommandExtractorWithRunner(Config{}, tt.runner).Extract(context.Background(), "a.pdf")

			var xerr *apperror.ExtractionError
			require.ErrorAs(t, err, &xerr)
			assert.ErrorIs(t, err, apperror.ErrExtraction)
			assert.Equal(t, tt.diagnostic, xerr.Diagnostic)
		})
	}
}

func TestCommandExtractor_ExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	e := NewCommandExtractor(Config{Command: "sh", Script: "-c", Timeout: 5 * time.Second})

	// sh -c <path> runs the path argument as a script
	_, err := e.Extract(context.Background(), "echo broken >&2; exit 3")

	var xerr *apperror.ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, 3, xerr.ExitCode)
	assert.Equal(t, "broken", xerr.Diagnostic)
}

func TestCommandExtractor_Timeout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	e := NewCommandExtractor(Config{Command: "sh", Script: "-c", Timeout: 50 * time.Millisecond})

	_, err := e.Extract(context.Background(), "sleep 5")

	var xerr *apperror.ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
