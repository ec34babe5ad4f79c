// Package pagestream implements a paged output stream: a forward-only byte
// sink that buffers writes in fixed-size pages, supports carving reservation
// windows for values whose final bytes aren't known until later, and drains
// completed pages to a pluggable sink.
package pagestream

import (
	"context"

	"github.com/dargueta/pagestream/faults"
	"github.com/dargueta/pagestream/pagebuf"
	"github.com/dargueta/pagestream/sink"
)

// DefaultPageSize is used whenever a Config leaves PageSize unset: 4096 bytes
// minus a small allowance for allocator bookkeeping overhead.
const DefaultPageSize = 4096 - 16

// DefaultMaxBufferedBytes is used whenever a Config leaves MaxBufferedBytes
// unset.
const DefaultMaxBufferedBytes = 4 * DefaultPageSize

// Config configures a new buffered OutputStream.
type Config struct {
	// PageSize is the size of each page the stream allocates. Zero means
	// DefaultPageSize.
	PageSize int

	// MaxBufferedBytes is not read by any OutputStream constructor; a pipe's
	// backpressure threshold comes from pipe.Config. It is accepted here so
	// every constructor shares one Config type. Zero means
	// DefaultMaxBufferedBytes.
	MaxBufferedBytes int
}

func (c Config) resolved() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxBufferedBytes <= 0 {
		c.MaxBufferedBytes = DefaultMaxBufferedBytes
	}
	return c
}

// OutputStream is a forward-only, paged byte sink. It is not safe for
// concurrent use by more than one goroutine at a time.
type OutputStream struct {
	span    *pagebuf.Span
	buffers *pagebuf.PageBuffers // nil for an unsafe-memory stream
	sink    *sink.Sink           // nil for a plain memory stream

	pos             int
	extCursorsCount int
	closed          bool
	unsafe          bool
	runwayExtended  bool
}

// Pos returns the number of bytes written so far, not counting bytes still
// held inside an open reservation.
func (s *OutputStream) Pos() int {
	return s.pos
}

// Closed reports whether Close has already run on this stream.
func (s *OutputStream) Closed() bool {
	return s.closed
}

// EnsureRunway guarantees the stream's current span has at least extra bytes
// of remaining capacity, growing or replacing the current page if needed.
// Per spec.md §9's open question, this may only be called once, immediately
// after construction before any byte has been written; calling it again, or
// after writes have begun, is a defect.
func (s *OutputStream) EnsureRunway(extra int) {
	if s.unsafe {
		faults.Defectf("pagestream: ensureRunway called on an unsafe-memory stream")
	}
	if s.runwayExtended || s.pos != 0 {
		faults.Defectf("pagestream: ensureRunway called more than once, or after writes have begun")
	}
	s.runwayExtended = true
	s.span = s.buffers.EnsureRunway(extra)
}

// WriteByte writes a single byte, satisfying io.ByteWriter.
func (s *OutputStream) WriteByte(b byte) error {
	if s.closed {
		return faults.ErrStreamClosed
	}
	if s.span.IsEmpty() {
		if err := s.refillSpan(); err != nil {
			return err
		}
	}
	s.span.PutByte(b)
	s.pos++
	return nil
}

// Write appends data to the stream, satisfying io.Writer. Per spec.md §4.2,
// a write that doesn't fit in the current span either spills into a freshly
// allocated page (when there's no live sink to drain to, or a reservation is
// outstanding) or is drained straight through the sink without ever being
// copied into a page.
func (s *OutputStream) Write(data []byte) (int, error) {
	if s.closed {
		return 0, faults.ErrStreamClosed
	}
	n := len(data)
	if n == 0 {
		return 0, nil
	}

	if n <= s.span.Len() {
		s.span.Put(data)
		s.pos += n
		return n, nil
	}

	if s.unsafe {
		faults.Defectf(
			"pagestream: write of %d bytes exceeds the unsafe-memory stream's remaining capacity of %d",
			n, s.span.Len(),
		)
	}

	if s.sink == nil || s.extCursorsCount > 0 {
		prefixLen := s.span.Len()
		s.span.Put(data[:prefixLen])
		s.pos += prefixLen
		s.buffers.EndLastPageAt(s.span.End())

		remainder := data[prefixLen:]
		pg := s.buffers.AddWritablePage(len(remainder))
		sp := pagebuf.NewSpan(pg, 0, pg.Cap())
		sp.Put(remainder)
		s.pos += len(remainder)
		s.span = sp
		return n, nil
	}

	// A sink is live and nothing is reserved: end the current page where the
	// span starts, drain every finished page plus this entire write straight
	// to the sink, and start fresh. The write itself is never copied into a
	// page.
	s.buffers.EndLastPageAt(s.span.Start())
	if err := s.drainPagesToSink(data); err != nil {
		return 0, err
	}
	s.pos += n
	s.span = s.buffers.GetWritableSpan()
	return n, nil
}

// refillSpan replenishes s.span once it has been fully consumed.
func (s *OutputStream) refillSpan() error {
	if s.unsafe {
		faults.Defectf("pagestream: write past the end of an unsafe-memory stream's fixed region")
	}
	if s.sink == nil || s.extCursorsCount > 0 {
		s.buffers.EndLastPageAt(s.span.End())
		s.span = s.buffers.GetWritableSpan()
		return nil
	}

	s.buffers.EndLastPageAt(s.span.Start())
	if err := s.drainPagesToSink(nil); err != nil {
		return err
	}
	s.span = s.buffers.GetWritableSpan()
	return nil
}

// drainPagesToSink writes every currently queued page to the sink in order,
// then extra if non-empty, without touching s.span. The caller is
// responsible for reinitializing the span afterward. Precondition: no
// reservations are outstanding and, when any byte is pending, the sink
// supports at least one write capability; a drain with nothing pending drops
// the empty pages without touching the sink. OutputStream's own surface is entirely synchronous (per
// spec.md §4.4's drainSync), so a sink that only offers WriteAsync (e.g. the
// pipe writer, per §4.7) is driven here with context.Background(): there is
// no caller-supplied context to cancel against, only the cooperative
// suspend/resume the pipe itself implements internally.
func (s *OutputStream) drainPagesToSink(extra []byte) error {
	if s.extCursorsCount > 0 {
		faults.Defectf("pagestream: drain attempted with %d reservation(s) outstanding", s.extCursorsCount)
	}
	if len(extra) == 0 && s.buffers.BufferedBytes() == 0 {
		return s.buffers.ConsumeAllPages(func([]byte) error { return nil })
	}

	write, err := s.writeFunc()
	if err != nil {
		s.closed = true
		return err
	}

	err = s.buffers.ConsumeAllPages(func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		_, werr := write(data)
		return werr
	})
	if err == nil && len(extra) > 0 {
		_, err = write(extra)
	}
	if err != nil {
		s.closed = true
		return err
	}
	return nil
}

// writeFunc returns a blocking write function backed by whichever write
// capability the sink offers, preferring WriteSync.
func (s *OutputStream) writeFunc() (func([]byte) (int, error), error) {
	if s.sink.SupportsSyncWrite() {
		return s.sink.WriteSync, nil
	}
	if s.sink.SupportsAsyncWrite() {
		return func(p []byte) (int, error) {
			return s.sink.WriteAsync(context.Background(), p)
		}, nil
	}
	return nil, faults.ErrSinkUnsupported.WithMessage("writeSync/writeAsync")
}

// Flush ends the current page, drains every completed page to the sink (if
// any), and invokes the sink's flush capability when it has one. A plain
// memory stream (no sink) just rotates in a fresh page; its buffered pages
// are left intact for a later GetOutput/ConsumeOutputs.
func (s *OutputStream) Flush() error {
	if s.closed {
		return faults.ErrStreamClosed
	}
	if s.extCursorsCount > 0 {
		faults.Defectf("pagestream: flush called with %d reservation(s) outstanding", s.extCursorsCount)
	}
	if s.unsafe {
		return nil
	}

	s.buffers.EndLastPageAt(s.span.Start())
	if s.sink != nil {
		if err := s.drainPagesToSink(nil); err != nil {
			return err
		}
		if s.sink.SupportsSyncFlush() {
			if err := s.sink.FlushSync(); err != nil {
				s.closed = true
				return faults.ErrIOFailed.WrapError(err)
			}
		}
	}
	s.span = s.buffers.GetWritableSpan()
	return nil
}

// GetOutput ends the current page and returns every buffered byte written so
// far as a single slice, leaving the stream pristine and ready for more
// writes. Only valid on a buffered stream (plain memory, file, or pipe); an
// unsafe-memory stream has no buffers to extract.
func (s *OutputStream) GetOutput() ([]byte, error) {
	if s.closed {
		return nil, faults.ErrStreamClosed
	}
	if s.buffers == nil {
		return nil, faults.ErrNotBuffered
	}
	if s.extCursorsCount > 0 {
		faults.Defectf("pagestream: getOutput called with %d reservation(s) outstanding", s.extCursorsCount)
	}

	s.buffers.EndLastPageAt(s.span.Start())
	pages := s.buffers.Pages()

	var result []byte
	if len(pages) == 1 && pages[0].Detachable() && pages[0].StartOffset() == 0 {
		result = pages[0].Live()
		_ = s.buffers.ConsumeAllPages(func([]byte) error { return nil })
	} else {
		result = make([]byte, 0, s.pos)
		_ = s.buffers.ConsumeAllPages(func(data []byte) error {
			result = append(result, data...)
			return nil
		})
	}

	s.pos = 0
	s.span = s.buffers.GetWritableSpan()
	return result, nil
}

// ConsumeOutputs ends the current page and invokes callback once per
// buffered page's live region, in order, without concatenating them into a
// single allocation. The stream is left pristine afterward, same as
// GetOutput. If callback returns an error, draining stops and that error is
// returned.
func (s *OutputStream) ConsumeOutputs(callback func(data []byte) error) error {
	if s.closed {
		return faults.ErrStreamClosed
	}
	if s.buffers == nil {
		return faults.ErrNotBuffered
	}
	if s.extCursorsCount > 0 {
		faults.Defectf("pagestream: consumeOutputs called with %d reservation(s) outstanding", s.extCursorsCount)
	}

	s.buffers.EndLastPageAt(s.span.Start())
	err := s.buffers.ConsumeAllPages(callback)
	s.pos = 0
	s.span = s.buffers.GetWritableSpan()
	return err
}
