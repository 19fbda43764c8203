// Package apperr defines the orchestrator's typed error kinds, so
// callers can distinguish them with errors.Is/errors.As instead of
// string matching, and internal/httpapi can map them to HTTP status
// codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the orchestrator's error categories.
type Kind int

const (
	InputValidation Kind = iota
	Conflict
	NotFound
	UpstreamError
	Persistence
	ReconstructorFailure
	Invariant
)

func (k Kind) String() string {
	switch k {
	case InputValidation:
		return "input-validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not-found"
	case UpstreamError:
		return "upstream-error"
	case Persistence:
		return "persistence"
	case ReconstructorFailure:
		return "reconstructor-failure"
	case Invariant:
		return "invariant-violation"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind, letting callers recover the
// category via errors.As while keeping the original error message.
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

// New constructs an *Error of the given kind.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Wrap constructs an *Error of the given kind wrapping err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
