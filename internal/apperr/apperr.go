// Package apperr classifies failures crossing service and HTTP boundaries.
//
// Every error a service returns to a handler is either an *Error carrying a
// Kind, or wraps one. Handlers never inspect messages; they ask HTTPStatus.
package apperr

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the failure class of an operation.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindValidationFailed
	KindPersistenceFailed
	KindSideEffectFailed
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindValidationFailed:
		return "validation_failed"
	case KindPersistenceFailed:
		return "persistence_failed"
	case KindSideEffectFailed:
		return "side_effect_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to return to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Format prints the cause with its stack trace under %+v, so a logged 5xx
// shows where a wrapped store or storage error came from.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Err != nil {
			fmt.Fprintf(s, "%s: %+v", e.Message, e.Err)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func newf(kind Kind, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Invalid reports malformed or constraint-violating input.
func Invalid(format string, args ...interface{}) error {
	return newf(KindInvalid, nil, format, args...)
}

// NotFound reports that the operation's own target id does not resolve locally.
func NotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, nil, format, args...)
}

// ValidationFailed reports that a referenced foreign entity could not be
// confirmed, whether it is absent or its owner is unreachable.
func ValidationFailed(cause error, format string, args ...interface{}) error {
	return newf(KindValidationFailed, cause, format, args...)
}

// PersistenceFailed wraps a failed local write. It is terminal.
func PersistenceFailed(cause error, format string, args ...interface{}) error {
	return newf(KindPersistenceFailed, cause, format, args...)
}

// SideEffectFailed wraps a failed best-effort dispatch. It is only ever logged.
func SideEffectFailed(cause error, format string, args ...interface{}) error {
	return newf(KindSideEffectFailed, cause, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newf(KindUnauthorized, nil, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newf(KindConflict, nil, format, args...)
}

// KindOf returns the Kind of the outermost classified error in err's chain,
// or KindInternal when none is present.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the caller-facing message for err. Causes are never
// included: they carry sibling addresses and driver errors, and are logged
// instead.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal server error"
}

// HTTPStatus maps err to the status code a handler should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalid, KindValidationFailed, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
