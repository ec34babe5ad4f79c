package pagestream

import (
	"github.com/dargueta/pagestream/faults"
	"github.com/dargueta/pagestream/pagebuf"
)

// ReserveFixed carves out a reservation of exactly n bytes at the stream's
// current position and returns a cursor that can backfill it once the value
// is known, without blocking the stream's own forward progress. Per
// spec.md §4.3, a reservation that doesn't fit in the page currently open
// splits across a page boundary; the cursor tracks both fragments
// transparently.
func (s *OutputStream) ReserveFixed(n int) *WriteCursor {
	if s.closed {
		faults.Defectf("pagestream: reserveFixed called on a closed stream")
	}
	if n < 0 {
		faults.Defectf("pagestream: reserveFixed called with a negative size")
	}

	if n <= s.span.Len() {
		start := s.span.Start()
		pg := s.span.Page()
		cursorSpan := pagebuf.NewSpan(pg, start, start+n)
		s.span = pagebuf.NewSpan(pg, start+n, s.span.End())
		s.extCursorsCount++
		return &WriteCursor{stream: s, span: cursorSpan, size: n}
	}

	deficit := n - s.span.Len()
	firstFragment := pagebuf.NewSpan(s.span.Page(), s.span.Start(), s.span.End())

	if s.unsafe {
		faults.Defectf("pagestream: reservation of %d bytes cannot split across a page boundary on an unsafe-memory stream", n)
	}

	s.buffers.EndLastPageAt(s.span.End())
	continuation := s.buffers.AddWritablePage(deficit)
	continuation.MarkSplitPending(deficit)
	s.span = pagebuf.NewSpan(continuation, deficit, continuation.Cap())
	s.extCursorsCount++

	return &WriteCursor{
		stream:       s,
		span:         firstFragment,
		continuation: continuation,
		splitPending: true,
		size:         n,
	}
}

// WriteCursor backfills a fixed-size reservation made by ReserveFixed. The
// reservation may span two pages; the cursor hides that from the caller.
type WriteCursor struct {
	stream       *OutputStream
	span         *pagebuf.Span
	continuation *pagebuf.Page
	splitPending bool
	size         int
	written      int
	finalized    bool
}

// Size returns the total number of bytes this cursor reserved.
func (c *WriteCursor) Size() int {
	return c.size
}

// Write copies data into the reservation, advancing across the split-page
// boundary transparently if one exists. Writing past the declared size is a
// defect.
func (c *WriteCursor) Write(data []byte) (int, error) {
	if c.finalized {
		faults.Defectf("pagestream: write to a cursor that has already been finalized")
	}

	total := 0
	for len(data) > 0 {
		if c.span.IsEmpty() {
			if !c.splitPending {
				faults.Defectf("pagestream: write past a cursor's declared %d-byte reservation", c.size)
			}
			prefixLen := c.continuation.PendingPrefixLen()
			c.span = pagebuf.NewSpan(c.continuation, 0, prefixLen)
			c.continuation.ResolveSplitPrefix()
			c.splitPending = false
			continue
		}

		n := c.span.Put(data)
		data = data[n:]
		total += n
		c.written += n
	}
	c.stream.pos += total
	return total, nil
}

// WriteByte writes a single byte into the reservation.
func (c *WriteCursor) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

// Finalize writes the cursor's remaining bytes in one call and releases the
// reservation, letting the stream drain past this position again. data must
// be exactly Size() bytes if this is the cursor's first write, or exactly
// the number of bytes left to reach Size() otherwise; a mismatch is a
// defect.
func (c *WriteCursor) Finalize(data []byte) {
	if c.finalized {
		faults.Defectf("pagestream: cursor finalized twice")
	}
	remaining := c.size - c.written
	if len(data) != remaining {
		faults.Defectf("pagestream: finalize expected exactly %d bytes, got %d", remaining, len(data))
	}
	_, _ = c.Write(data)
	c.finalized = true
	c.stream.extCursorsCount--
}

// ReserveVar carves out a variable-size reservation of up to maxN bytes,
// returning a cursor that must be finalized with the actual number of bytes
// once known. Per spec.md §4.3 the reservation always occupies either the
// tail of the page currently open (if it fits) or the head of a fresh page
// (if it doesn't); it never straddles two pages, so the eventual shrink in
// Finalize never needs to touch more than one page's offsets. Forbidden on
// an unsafe-memory stream, since there is no page queue to carve a
// standalone reservation page out of.
func (s *OutputStream) ReserveVar(maxN int) *VarSizeWriteCursor {
	if s.closed {
		faults.Defectf("pagestream: reserveVar called on a closed stream")
	}
	if s.buffers == nil {
		faults.Defectf("pagestream: reserveVar called on a stream without page buffers")
	}

	if maxN <= s.span.Len() {
		start := s.span.Start()
		pg := s.span.Page()
		s.buffers.SplitLastPageAt(start + maxN)
		s.span = s.buffers.GetWritableSpan()
		s.extCursorsCount++
		return &VarSizeWriteCursor{
			stream:             s,
			page:               pg,
			startAddr:          start,
			maxLen:             maxN,
			endsAtPageBoundary: true,
		}
	}

	s.buffers.EndLastPageAt(s.span.Start())
	pg := s.buffers.AddWritablePage(maxN)
	s.span = pagebuf.NewSpan(pg, maxN, pg.Cap())
	s.extCursorsCount++
	return &VarSizeWriteCursor{
		stream:    s,
		page:      pg,
		startAddr: 0,
		maxLen:    maxN,
	}
}

// VarSizeWriteCursor backfills a variable-size reservation made by
// ReserveVar. Unlike WriteCursor it is finalized in a single call, since the
// reservation's whole point is that the byte count isn't known until the
// value is fully computed.
type VarSizeWriteCursor struct {
	stream             *OutputStream
	page               *pagebuf.Page
	startAddr          int
	maxLen             int
	endsAtPageBoundary bool
	finalized          bool
}

// MaxLen returns the maximum number of bytes this cursor may be finalized
// with.
func (c *VarSizeWriteCursor) MaxLen() int {
	return c.maxLen
}

// Finalize writes actual into the reservation and shrinks it to fit. Writing
// more bytes than MaxLen(), or finalizing twice, is a defect.
func (c *VarSizeWriteCursor) Finalize(actual []byte) {
	if c.finalized {
		faults.Defectf("pagestream: var-size cursor finalized twice")
	}
	overestimated := c.maxLen - len(actual)
	if overestimated < 0 {
		faults.Defectf("pagestream: finalize: %d bytes exceeds the %d-byte reservation", len(actual), c.maxLen)
	}

	if c.endsAtPageBoundary {
		c.page.WriteAt(c.startAddr, actual)
		c.page.TrimEnd(c.startAddr + len(actual))
	} else {
		c.page.WriteAt(c.startAddr+overestimated, actual)
		c.page.TrimStart(c.startAddr + overestimated)
	}

	c.finalized = true
	c.stream.extCursorsCount--
	c.stream.pos += len(actual)
}
