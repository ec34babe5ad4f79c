package faults

import "fmt"

// Code is a sentinel error value. It implements [Error] directly so it can be
// returned bare when no extra context is needed, or decorated with
// WithMessage/WrapError when it is.
type Code string

const (
	// ErrCursorsOutstanding names the condition of one or more reservations
	// not yet finalized when a drain is requested. Flush, GetOutput and
	// ConsumeOutputs treat that condition as a Defect and panic; none of
	// them returns this value.
	ErrCursorsOutstanding = Code("cannot drain: reservations are outstanding")

	// ErrNotBuffered is returned by GetOutput and ConsumeOutputs on a stream
	// that has no PageBuffers, i.e. an unsafe-memory stream. ReserveVar on
	// such a stream panics with a Defect instead.
	ErrNotBuffered = Code("stream has no page buffers")

	// ErrStreamClosed is returned by Write, WriteByte, Flush, GetOutput and
	// ConsumeOutputs on a stream after Close has run, or after a sink
	// operation has already failed. ReserveFixed and ReserveVar on such a
	// stream panic with a Defect instead.
	ErrStreamClosed = Code("stream is closed")

	// ErrSinkUnsupported is returned when the requested capability (async
	// write, flush, or close) is not present on the stream's sink.
	ErrSinkUnsupported = Code("sink does not support this operation")

	// ErrIOFailed wraps a failure reported by a sink's write, flush, or
	// close operation.
	ErrIOFailed = Code("sink I/O operation failed")
)

// Error implements the error interface.
func (c Code) Error() string {
	return string(c)
}

func (c Code) WithMessage(message string) Error {
	return wrappedError{
		message:       fmt.Sprintf("%s: %s", string(c), message),
		originalError: c,
	}
}

func (c Code) WrapError(err error) Error {
	return wrappedError{
		message:       fmt.Sprintf("%s: %s", string(c), err.Error()),
		originalError: err,
	}
}

func (c Code) Unwrap() error {
	return nil
}

// Defect is the panic value raised for programming errors: conditions
// spec.md §7 calls out as "asserted, not recovered" rather than part of the
// recoverable error taxonomy. Examples: writing past a cursor's declared
// span, finalizing a cursor with the wrong number of bytes, calling
// reserveVar on an unbuffered stream, exhausting an unsafe-memory stream's
// fixed region.
type Defect string

// Error implements the error interface so a recovered Defect can be
// inspected the same way as any other error, even though it is never
// returned directly.
func (d Defect) Error() string {
	return string(d)
}

// Defectf builds a Defect with a formatted message and panics with it.
func Defectf(format string, args ...any) {
	panic(Defect(fmt.Sprintf(format, args...)))
}
