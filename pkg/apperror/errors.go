// Package apperror holds the error taxonomy shared by the indexing and
// retrieval pipeline. Each kind has a sentinel usable with errors.Is and a
// typed value carrying details usable with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates a required provider setting is missing.
	ErrConfig = errors.New("configuration error")

	// ErrProvider indicates the remote embedding or completion service failed.
	ErrProvider = errors.New("provider error")

	// ErrNotFound indicates a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExtraction indicates the text extraction collaborator failed.
	ErrExtraction = errors.New("extraction error")

	// ErrDuplicateKey indicates a uniqueness constraint was violated.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput indicates malformed caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or wrong credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

type ConfigError struct {
	Setting string
}

func NewConfigError(setting string) *ConfigError {
	return &ConfigError{Setting: setting}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Setting)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// ProviderError keeps the upstream status and raw body for diagnostics.
// Status is 0 when the request never produced a response.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func NewProviderError(provider string, status int, body string) *ProviderError {
	return &ProviderError{Provider: provider, Status: status, Body: body}
}

func WrapProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.Status, e.Body)
}

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func (e *ProviderError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Hint     string
}

func NewNotFoundError(resource, hint string) *NotFoundError {
	return &NotFoundError{Resource: resource, Hint: hint}
}

func (e *NotFoundError) Error() string {
	if e.Hint != "" {
		return e.Hint
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NoEmbeddedChunks is returned when a document has nothing to retrieve from.
func NoEmbeddedChunks() *NotFoundError {
	return NewNotFoundError("chunks", "No embedded chunks found for this document. Please re-index.")
}

type ExtractionError struct {
	ExitCode   int
	Diagnostic string
	Err        error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("text extraction failed (exit code %d)", e.ExitCode)
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

func (e *ExtractionError) Unwrap() error { return e.Err }

// InvalidInput wraps ErrInvalidInput with a readable reason.
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
