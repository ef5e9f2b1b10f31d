// Package apperr defines the error kinds the API surfaces to callers.
// Handlers map kinds to HTTP statuses; services decide the kind once at the
// point of failure and callers branch with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindNotFound covers missing or inactive poems, sessions and recordings.
	KindNotFound Kind = iota
	// KindValidation covers out-of-range values, invalid status transitions
	// and malformed period bounds. Never retried.
	KindValidation
	// KindConflict covers the duplicate in-progress session race.
	KindConflict
	// KindStorage covers media persistence failures.
	KindStorage
	// KindForbidden covers role checks (teacher-only reports, ownership).
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Error carries a kind plus a caller-safe message. The wrapped cause may hold
// internal detail (storage paths, SQL errors) and is only ever logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string) *Error            { return New(KindNotFound, msg) }
func Validation(msg string) *Error          { return New(KindValidation, msg) }
func Conflict(msg string) *Error            { return New(KindConflict, msg) }
func Storage(msg string, err error) *Error  { return Wrap(KindStorage, msg, err) }
func Forbidden(msg string) *Error           { return New(KindForbidden, msg) }

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the caller-safe message for err, or a generic fallback for
// errors that never got a kind (these are internal and must not leak).
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "erreur serveur"
}
