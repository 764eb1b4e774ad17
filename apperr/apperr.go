// Package apperr defines the domain error taxonomy shared by the ring
// engine, the proximity service and the transports.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindNotFound: a referenced game or player does not exist.
	KindNotFound Kind = iota
	// KindInvalidState: the operation is invalid for the current
	// game or player state.
	KindInvalidState
	// KindInvalidTarget: unknown code, dead target, or a target that
	// is not the killer's assignment.
	KindInvalidTarget
	// KindConflict: nickname or secret code collision within a game.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidTarget:
		return "invalid_target"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries a machine-checkable kind plus a human-readable reason.
// Internal state (queries, stacks) never rides along.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return New(KindInvalidState, format, args...)
}

func InvalidTarget(format string, args ...interface{}) *Error {
	return New(KindInvalidTarget, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

// KindOf reports the kind of err, or ok=false for non-domain errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
