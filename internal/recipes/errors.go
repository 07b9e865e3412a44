package recipes

import (
	"errors"
	"fmt"
)

// Code classifies why a transition did not complete.
type Code string

const (
	// CodeUserInput marks a malformed or non-positive recipe count.
	CodeUserInput Code = "USER_INPUT"
	// CodeUpstreamUnavailable marks a failed or unparsable catalog call.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	// CodeEmptySelection marks a category without recipes.
	CodeEmptySelection Code = "EMPTY_SELECTION"
	// CodeSessionExpired marks conversation data that is missing for the
	// current state, for example after a restart.
	CodeSessionExpired Code = "SESSION_EXPIRED"
)

// Error reports a transition that stopped early. The user has already been
// given a notice for it; callers only log it.
type Error struct {
	Kind   Code
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("recipes: %s: %s", e.Kind, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Code returns the error classification for logs.
func (e *Error) Code() string {
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Code, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
