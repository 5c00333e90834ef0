// Package apperr defines the domain error taxonomy shared by all BoxBee
// services. Every operation boundary returns one of these kinds; the HTTP
// layer maps kinds to status codes and never inspects raw storage errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindInternal is an unexpected failure (persistence, programming error).
	// Fatal to the request, never retried.
	KindInternal Kind = iota

	// KindValidation is malformed or out-of-range input. Surfaced to the
	// caller with field-level detail.
	KindValidation

	// KindNotFound means the requested entity does not exist.
	KindNotFound

	// KindForbidden means the caller does not own the entity.
	KindForbidden

	// KindInvalidTransition is a state-machine guard violation, e.g.
	// starting a box that is not scheduled.
	KindInvalidTransition

	// KindConflict means the request collides with existing state, e.g.
	// signing up with an email that is already registered.
	KindConflict

	// KindUnauthorized means the caller presented no identity or a bad one.
	KindUnauthorized

	// KindUnavailable means an external capability (the AI service) is not
	// configured and the operation has no fallback.
	KindUnavailable
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified domain error.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// Validation builds a validation error with optional field detail.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound builds a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden builds an ownership-mismatch error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// InvalidTransition builds a state-machine guard error.
func InvalidTransition(message string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: message}
}

// Conflict builds a state-collision error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthorized builds a missing/bad-identity error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Unavailable builds an external-capability-absent error.
func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// Internal wraps an unexpected failure. The cause is preserved for logging
// but never shown to API callers.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf extracts the kind from any error. Unclassified errors are
// reported as internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
