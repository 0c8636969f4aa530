package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the transport boundary can map it to a
// status code without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindNotFound
	KindUnauthorized
	KindBadRequest
)

func (k Kind) Code() string {
	switch k {
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL"
	}
}

// Error carries a stable machine-readable code plus a human message.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Code() string {
	return e.kind.Code()
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Conflict(message string) *Error {
	return newError(KindConflict, message)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, message)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, message)
}

func BadRequest(message string) *Error {
	return newError(KindBadRequest, message)
}

// Internal wraps an unexpected failure. The cause is kept for logging but
// the message shown to callers stays generic.
func Internal(cause error) *Error {
	return &Error{kind: KindInternal, message: "internal error", cause: cause}
}

// Internalf builds an internal error from a formatted cause.
func Internalf(format string, args ...any) *Error {
	return Internal(fmt.Errorf(format, args...))
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// anything outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsKind reports whether err belongs to the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
