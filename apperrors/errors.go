// Package apperrors defines the failure kinds surfaced by the progress and
// certificate services. Callers match on kinds with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrValidation         = errors.New("validation error")
)

// Error carries a user-facing message together with its kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an *Error of the given kind
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(ErrForbidden, format, args...)
}

func PreconditionFailed(format string, args ...interface{}) *Error {
	return New(ErrPreconditionFailed, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(ErrValidation, format, args...)
}

// Message extracts the user-facing message, falling back to err.Error()
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
