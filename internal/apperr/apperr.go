// Package apperr implements the error taxonomy from spec.md §7: a small
// closed set of Kinds that config loading, the CA processor, and the test
// runner return their errors through, mapped to process exit codes by
// cmd/caca.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the five error categories spec.md §7 defines. Only
// ConfigError, WorkerFailed, and Cancelled ever surface as a Go error from
// an exported operation; InputTooShort and NumericError are recorded inside
// a nist.TestResult instead of aborting a run.
type Kind int

const (
	ConfigError Kind = iota
	InputTooShort
	NumericError
	WorkerFailed
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "ConfigError"
	case InputTooShort:
		return "InputTooShort"
	case NumericError:
		return "NumericError"
	case WorkerFailed:
		return "WorkerFailed"
	case Cancelled:
		return "Cancelled"
	default:
		return "UnknownError"
	}
}

// Error is the concrete type every Kind is carried in. Cause is unwrapped
// by errors.Unwrap/errors.Is so callers can still test against context.Canceled
// and friends beneath a Cancelled-kind Error.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a Kind-tagged error with a static message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Newf builds a Kind-tagged error with a formatted message. Only the
// formatted text is kept; no stack trace is attached.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error()}
}

// Wrap attaches kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: "wrapped", cause: err}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
