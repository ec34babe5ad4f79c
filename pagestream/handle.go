package pagestream

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/dargueta/pagestream/faults"
)

// CloseBehavior controls what Handle.Close does when the stream's sink
// supports an asynchronous close.
type CloseBehavior int

const (
	// WaitAsyncClose blocks until the sink's asynchronous close completes
	// and returns any error it reports.
	WaitAsyncClose CloseBehavior = iota

	// DontWaitAsyncClose launches the asynchronous close and returns
	// immediately without waiting for it. Any error the close eventually
	// reports is delivered to UnhandledErrorHandler instead of being
	// returned from Close.
	DontWaitAsyncClose
)

// UnhandledErrorHandler is invoked with any error a fire-and-forget
// (DontWaitAsyncClose) close eventually reports, since by the time it
// arrives the caller that asked for the close has nothing left to hand the
// error to. The default is a no-op; tests may swap it out to capture calls.
var UnhandledErrorHandler = func(err error) {}

// Handle owns an OutputStream and guarantees its sink is closed exactly
// once, regardless of how many times Close is called.
type Handle struct {
	Stream *OutputStream
}

// Close flushes the stream and closes its sink, aggregating both failures
// together with go-multierror rather than discarding whichever happens
// second. Calling Close more than once is safe; later calls are no-ops.
func (h *Handle) Close(behavior CloseBehavior) error {
	var result *multierror.Error

	if err := h.Stream.Flush(); err != nil && err != faults.ErrStreamClosed {
		result = multierror.Append(result, err)
	}
	if err := h.Stream.close(behavior); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// close releases the stream's sink and marks the stream closed. Idempotent:
// once the sink has been released it's a no-op. A stream already latched
// closed by a failed sink operation still has its sink closed here.
func (s *OutputStream) close(behavior CloseBehavior) error {
	s.closed = true

	if s.sink == nil {
		return nil
	}

	if s.sink.SupportsAsyncClose() {
		if behavior == DontWaitAsyncClose {
			closeFn := s.sink.CloseAsync
			go func() {
				if err := closeFn(context.Background()); err != nil {
					UnhandledErrorHandler(err)
				}
			}()
			s.sink = nil
			return nil
		}

		err := s.sink.CloseAsync(context.Background())
		s.sink = nil
		return err
	}

	if s.sink.SupportsSyncClose() {
		err := s.sink.CloseSync()
		s.sink = nil
		return err
	}

	s.sink = nil
	return nil
}
