// Package faults defines the error taxonomy used throughout pagestream.
//
// Two kinds of failure are distinguished. An Error is a recoverable failure
// that a caller can reasonably handle, almost always because the underlying
// sink rejected a write, flush, or close. A Defect is a programming error —
// writing past a cursor's declared span, finalizing a cursor twice, draining
// while reservations are outstanding — and is raised as a panic rather than
// returned, since there is no sensible way for a caller to recover from it.
package faults

import "fmt"

// Error is the interface satisfied by every recoverable failure returned
// from this module. It lets callers attach context to a sentinel value
// without losing the ability to compare against it with errors.Is.
type Error interface {
	error

	// WithMessage returns a copy of the error with additional context
	// appended to its message.
	WithMessage(message string) Error

	// WrapError returns a copy of the error that also wraps err, so that
	// errors.Unwrap(result) == err.
	WrapError(err error) Error

	// Unwrap returns the wrapped error, if any.
	Unwrap() error
}

// -----------------------------------------------------------------------------

type wrappedError struct {
	message       string
	originalError error
}

// Error implements the error interface.
func (e wrappedError) Error() string {
	return e.message
}

func (e wrappedError) WithMessage(message string) Error {
	return wrappedError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e wrappedError) WrapError(err error) Error {
	return wrappedError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}

func (e wrappedError) Unwrap() error {
	return e.originalError
}
