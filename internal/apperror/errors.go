package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes rejected input. Constraint names the rule
// that was violated so the caller can act on it.
type ValidationError struct {
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(constraint, message string) *ValidationError {
	return &ValidationError{Constraint: constraint, Message: message}
}

// NotFoundError marks a missing record, distinct from transient I/O
// failures so callers can map it to 404 instead of 500.
type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	if e.Id == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.Id)
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: id}
}

// UpstreamError is a single provider attempt that failed. Retryable
// reports whether the fallback chain may advance past it.
type UpstreamError struct {
	Provider  string
	Status    int
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UpstreamTimeout is an UpstreamError variant for deadline expiry.
// Always retryable.
type UpstreamTimeout struct {
	Provider string
	Err      error
}

func (e *UpstreamTimeout) Error() string {
	return fmt.Sprintf("provider %s: timed out: %v", e.Provider, e.Err)
}

func (e *UpstreamTimeout) Unwrap() error {
	return e.Err
}

// AttemptFailure records one provider's failure inside an exhausted
// chain, for diagnostics.
type AttemptFailure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// AllProvidersExhausted means every provider in the chain was tried and
// failed. Carries per-provider reasons so "all providers down" can be
// told apart from "content unsupported everywhere".
type AllProvidersExhausted struct {
	Failures []AttemptFailure
}

func (e *AllProvidersExhausted) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Provider, f.Reason))
	}
	return "all providers exhausted: " + strings.Join(parts, "; ")
}

// StreamingError is a mid-stream failure signaled by the provider. The
// exchange is over; the caller may retry non-streaming.
type StreamingError struct {
	Message string
}

func (e *StreamingError) Error() string {
	return "streaming error: " + e.Message
}

// ParseError means the provider payload for quiz/flashcards was wholly
// unusable. Partial payloads are repaired by the parser instead.
type ParseError struct {
	Kind    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Kind, e.Message)
}

// IngestionFailed means a document could not be turned into text at
// all; the document is marked with the error status.
type IngestionFailed struct {
	Stage string
	Err   error
}

func (e *IngestionFailed) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

func (e *IngestionFailed) Unwrap() error {
	return e.Err
}

// OCRFailure is an IngestionFailed cause specific to the OCR path.
type OCRFailure struct {
	Page int
	Err  error
}

func (e *OCRFailure) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("ocr failed on page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("ocr failed: %v", e.Err)
}

func (e *OCRFailure) Unwrap() error {
	return e.Err
}

// PersistenceFailure wraps a storage write that failed after the
// user-visible result was already delivered. Logged, never surfaced as
// a request error.
type PersistenceFailure struct {
	Op  string
	Err error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var timeout *UpstreamTimeout
	if errors.As(err, &timeout) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable
	}
	return false
}
