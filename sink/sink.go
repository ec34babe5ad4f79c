// Package sink defines the output sink contract that an OutputStream drains
// completed pages into, and provides the file-backed implementation.
//
// A Sink is a six-slot capability vector rather than a Go interface, because
// §4.6 of the design requires that a missing operation be representable as
// "not supported" without forcing an implementation to synthesize one (e.g.
// a synchronous sink must not fake an async close). This mirrors the
// teacher's FetchBlockCallback/FlushBlockCallback/ResizeCallback function-
// pointer fields in blockcache.go, generalized from three slots to six.
package sink

import "context"

// WriteSyncFunc writes p to the sink and returns the number of bytes
// written, blocking the calling goroutine until the write completes.
type WriteSyncFunc func(p []byte) (int, error)

// WriteAsyncFunc writes p to the sink, returning control to the caller's
// event loop instead of blocking the OS thread. It only returns once the
// write has completed or ctx is cancelled.
type WriteAsyncFunc func(ctx context.Context, p []byte) (int, error)

// FlushSyncFunc forces any data buffered downstream of the sink out to its
// final destination.
type FlushSyncFunc func() error

// FlushAsyncFunc is the async counterpart of FlushSyncFunc.
type FlushAsyncFunc func(ctx context.Context) error

// CloseSyncFunc releases the sink's resources.
type CloseSyncFunc func() error

// CloseAsyncFunc is the async counterpart of CloseSyncFunc.
type CloseAsyncFunc func(ctx context.Context) error

// Sink is the set of operations an OutputStream may invoke while draining.
// Any field may be nil, meaning that capability is not supported in this
// mode; callers must check before invoking.
type Sink struct {
	WriteSync  WriteSyncFunc
	WriteAsync WriteAsyncFunc
	FlushSync  FlushSyncFunc
	FlushAsync FlushAsyncFunc
	CloseSync  CloseSyncFunc
	CloseAsync CloseAsyncFunc
}

// SupportsSyncWrite reports whether WriteSync is present.
func (s *Sink) SupportsSyncWrite() bool { return s != nil && s.WriteSync != nil }

// SupportsAsyncWrite reports whether WriteAsync is present.
func (s *Sink) SupportsAsyncWrite() bool { return s != nil && s.WriteAsync != nil }

// SupportsSyncFlush reports whether FlushSync is present.
func (s *Sink) SupportsSyncFlush() bool { return s != nil && s.FlushSync != nil }

// SupportsAsyncFlush reports whether FlushAsync is present.
func (s *Sink) SupportsAsyncFlush() bool { return s != nil && s.FlushAsync != nil }

// SupportsSyncClose reports whether CloseSync is present.
func (s *Sink) SupportsSyncClose() bool { return s != nil && s.CloseSync != nil }

// SupportsAsyncClose reports whether CloseAsync is present.
func (s *Sink) SupportsAsyncClose() bool { return s != nil && s.CloseAsync != nil }
