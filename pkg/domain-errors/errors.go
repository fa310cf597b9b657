// Package dErrors provides coded domain errors shared by services and
// transports. Stores return sentinel errors (pkg/platform/sentinel);
// services translate them into coded errors here; transports map codes
// onto HTTP statuses without inspecting messages.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and callers.
type Code string

const (
	// CodeBadRequest marks malformed input (bad JSON, missing fields).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput marks a value that failed a parsing invariant.
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation marks recoverable business validation failures,
	// e.g. an edit request without a reason. Surfaced for user correction.
	CodeValidation Code = "validation"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated actor acting outside its scope.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an operation that lost to current state
	// (duplicate name, region still owning islands).
	CodeConflict Code = "conflict"
	// CodeInvalidActor marks a structurally broken actor (unknown role).
	// Fatal for the request: resolution must never default to all or none.
	CodeInvalidActor Code = "invalid_actor"
	// CodeTransitionNotAllowed marks an illegal workflow state move.
	CodeTransitionNotAllowed Code = "transition_not_allowed"
	// CodePartialFanout marks a committed mutation whose notification
	// persistence was incomplete. The primary effect stands; callers may
	// retry the fan-out but must never treat this as a clean success.
	CodePartialFanout Code = "partial_fanout"
	// CodeInvariantViolation marks a broken model invariant.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
// A nil cause yields nil so call sites can wrap unconditionally.
func Wrap(cause error, code Code, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var coded *Error
		if errors.As(err, &coded) {
			if coded.Code == code {
				return true
			}
			err = coded.cause
			continue
		}
		return false
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code in the chain, or CodeInternal when
// the error carries no code at all.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, or empty for uncoded errors.
func MessageOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return ""
}
