// Package apperr is the error taxonomy shared by the service layer and the
// HTTP handlers. Every error a service returns is an *Error, so handlers can
// map it to a status code without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindInvalidState  Kind = "invalid_state"
	KindAlreadyExists Kind = "already_exists"
	KindValidation    Kind = "validation_error"
	// KindUnavailable covers persistence failures (network, timeout, pool
	// exhaustion). It is the only kind that is safe to retry.
	KindUnavailable Kind = "unavailable"
)

type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "match.confirm".
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) *Error {
	return newf(KindNotFound, op, format, args...)
}

func Forbidden(op, format string, args ...any) *Error {
	return newf(KindForbidden, op, format, args...)
}

func InvalidState(op, format string, args ...any) *Error {
	return newf(KindInvalidState, op, format, args...)
}

func AlreadyExists(op, format string, args ...any) *Error {
	return newf(KindAlreadyExists, op, format, args...)
}

func Validation(op, format string, args ...any) *Error {
	return newf(KindValidation, op, format, args...)
}

// Unavailable wraps a persistence failure. If err already carries a Kind it
// is returned unchanged so business errors are never downgraded.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindUnavailable, Op: op, Msg: "storage unavailable", Err: err}
}

// KindOf reports the Kind of err, or "" when err is nil or untyped.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable is true only for transient failures. Business-rule violations
// must never be retried automatically.
func Retryable(err error) bool {
	return Is(err, KindUnavailable)
}

// Message returns the client-safe message for err. Wrapped causes are not
// exposed.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Msg != "" {
			return ae.Msg
		}
		return string(ae.Kind)
	}
	return "internal error"
}
