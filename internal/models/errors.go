// ABOUTME: Classified error taxonomy shared by the adapters and pipeline
// ABOUTME: Errors carry a failure kind plus a class so callers can branch on retryability
package models

import (
	"errors"
	"fmt"
)

// Kind identifies which stage of the pipeline failed.
type Kind int

const (
	KindUnknown Kind = iota
	// InvalidInput is the caller's fault (empty or oversized payload) and
	// is not retryable as-is.
	InvalidInput
	TranscriptionFailure
	EmbeddingFailure
	WriteFailure
	QueryFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case TranscriptionFailure:
		return "transcription failure"
	case EmbeddingFailure:
		return "embedding failure"
	case WriteFailure:
		return "write failure"
	case QueryFailure:
		return "query failure"
	default:
		return "unknown failure"
	}
}

// Class sub-classifies a failure so callers can react differently:
// retry (Transient), fix credentials (Forbidden), or fix configuration
// (NotFound, SchemaConflict).
type Class int

const (
	Unknown Class = iota
	NotFound
	Forbidden
	Transient
	SchemaConflict
)

func (c Class) String() string {
	switch c {
	case NotFound:
		return "not found"
	case Forbidden:
		return "forbidden"
	case Transient:
		return "transient"
	case SchemaConflict:
		return "schema conflict"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error. Adapters classify and forward;
// the orchestrator surfaces these unchanged.
type Error struct {
	Kind  Kind
	Class Class
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Kind, e.Class)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, class Class, op string, err error) *Error {
	return &Error{Kind: kind, Class: class, Op: op, Err: err}
}

// KindOf returns the kind of a classified error, or KindUnknown if err
// carries no classification.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// ClassOf returns the class of a classified error, or Unknown.
func ClassOf(err error) Class {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Class
	}
	return Unknown
}

// IsTransient reports whether err is classified as safe to retry.
func IsTransient(err error) bool {
	return ClassOf(err) == Transient
}

// ClassifyStatus maps an HTTP-style status code from an external service
// into an error class. All three service boundaries surface errors this
// way, so the mapping lives here to keep the adapters consistent.
func ClassifyStatus(code int) Class {
	switch {
	case code == 401 || code == 403:
		return Forbidden
	case code == 404:
		return NotFound
	case code == 408 || code == 429 || code >= 500:
		return Transient
	default:
		return Unknown
	}
}
