// Package apperr defines the typed error taxonomy surfaced to API callers.
// Every kind except KindInternal is an expected, locally-recoverable outcome;
// storage and infrastructure failures must be wrapped as KindInternal so
// callers can distinguish "you may not do this" from "the check itself failed".
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and client display.
type Kind string

const (
	KindBadRequest         Kind = "bad_request"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindInvariantViolation Kind = "invariant_violation"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindInternal           Kind = "internal"
)

// Error is a classified application error with an optional structured
// details payload (e.g. the caller's actual role vs the required set).
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches a structured details payload.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// BadRequest creates a bad-request error (e.g. missing workspace id).
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// Unauthorized creates a not-a-member / unauthenticated error.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Forbidden creates an insufficient-role/capability error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Invariant creates a membership-integrity violation error.
func Invariant(message string) *Error { return New(KindInvariantViolation, message) }

// Conflict creates a duplicate/replay error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// NotFound creates an unresolvable-id error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Internal wraps an unexpected failure (storage, network) as a generic
// internal error. The cause is kept for logging, never for the client.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
