package pagebuf

// PageBuffers is an ordered queue of pages plus the allocation hint used for
// new pages. It owns every page it creates. All pages but the last have a
// finalized endOffset; read front-to-back, the live bytes of every page in
// the queue form the logical byte stream.
type PageBuffers struct {
	pages      []*Page
	pageSize   int
	spare      []byte
	eofReached bool
}

// New creates a PageBuffers that allocates pages of pageSize bytes by
// default. pageSize must be positive.
func New(pageSize int) *PageBuffers {
	if pageSize <= 0 {
		panic("pagebuf: pageSize must be positive")
	}
	return &PageBuffers{pageSize: pageSize}
}

// PageSize returns the allocation hint used for new pages.
func (b *PageBuffers) PageSize() int {
	return b.pageSize
}

// Len returns the number of pages currently queued.
func (b *PageBuffers) Len() int {
	return len(b.pages)
}

// LastPage returns the most recently appended page, or nil if the queue is
// empty.
func (b *PageBuffers) LastPage() *Page {
	if len(b.pages) == 0 {
		return nil
	}
	return b.pages[len(b.pages)-1]
}

// Pages returns the queue's pages in order. The caller must not retain the
// slice across a call to ConsumeAllPages.
func (b *PageBuffers) Pages() []*Page {
	return b.pages
}

// roundSize rounds a requested allocation up to the greater of itself and
// the configured page size.
func (b *PageBuffers) roundSize(requested int) int {
	if requested < b.pageSize {
		return b.pageSize
	}
	return requested
}

// allocate returns a backing array of exactly size bytes, reusing the spare
// array left behind by the last drained page when the size matches.
func (b *PageBuffers) allocate(size int) []byte {
	if size == b.pageSize && b.spare != nil {
		data := b.spare
		b.spare = nil
		for i := range data {
			data[i] = 0
		}
		return data
	}
	return make([]byte, size)
}

// AddWritablePage appends a new page whose live region is initially the
// full backing array, sized to the greater of minSize and the configured
// page size (pass 0 for the default). Pages sized exactly one page are
// eligible for backing-array reuse once drained; oversized pages are not,
// since recycling them would grow the steady-state footprint.
func (b *PageBuffers) AddWritablePage(minSize int) *Page {
	size := b.roundSize(minSize)
	kind := KindDetached
	if size == b.pageSize {
		kind = KindPooled
	}
	pg := newPage(b.allocate(size), kind)
	b.pages = append(b.pages, pg)
	return pg
}

// AddDetachedPage appends a new page of exactly size bytes that is never
// eligible for backing-array recycling, regardless of how size compares to
// the configured page size. Used by callers that want to guarantee a page
// can later be handed out zero-copy rather than leaving its Kind to
// AddWritablePage's pageSize-based inference.
func (b *PageBuffers) AddDetachedPage(size int) *Page {
	pg := newPage(make([]byte, size), KindDetached)
	b.pages = append(b.pages, pg)
	return pg
}

// GetWritableSpan returns a span over the last page's full live region if
// that page is still open (not yet finalized), otherwise it appends a new
// page and returns a span over the whole of it.
func (b *PageBuffers) GetWritableSpan() *Span {
	if last := b.LastPage(); last != nil && last.IsOpen() && !last.IsSplitPending() {
		return NewSpan(last, last.startOffset, last.endOffset)
	}
	pg := b.AddWritablePage(0)
	return NewSpan(pg, 0, pg.endOffset)
}

// EnsureRunway guarantees the trailing writable span is at least extra
// bytes, growing the last page's backing array in place (if one exists and
// nothing has been committed past it yet) or appending a large-enough page.
// Per spec.md §9, this must only be called once, immediately after
// construction; callers are responsible for enforcing that.
func (b *PageBuffers) EnsureRunway(extra int) *Span {
	last := b.LastPage()
	if last == nil || !last.IsOpen() || last.IsSplitPending() {
		pg := b.AddWritablePage(extra)
		return NewSpan(pg, 0, pg.endOffset)
	}

	if len(last.data) < extra {
		grown := make([]byte, extra)
		copy(grown, last.data)
		last.data = grown
		last.endOffset = extra
	}
	return NewSpan(last, last.startOffset, last.endOffset)
}

// EndLastPageAt sets endOffset on the last page so its live region
// terminates at addr, and marks it no longer growable. Idempotent when addr
// already equals the current end.
func (b *PageBuffers) EndLastPageAt(addr int) {
	if last := b.LastPage(); last != nil {
		last.endOffset = addr
		last.close()
	}
}

// SplitLastPageAt ends the last page at addr and begins a new logical page
// sharing the same backing array, whose live region starts at addr and
// initially runs to the end of the array. Used to carve a var-size
// reservation out of the tail of the current page.
func (b *PageBuffers) SplitLastPageAt(addr int) *Page {
	last := b.LastPage()
	if last == nil {
		panic("pagebuf: SplitLastPageAt called with no pages queued")
	}
	last.endOffset = addr
	last.close()

	tail := &Page{
		data:        last.data,
		startOffset: addr,
		endOffset:   len(last.data),
		kind:        last.kind,
		open:        true,
	}
	b.pages = append(b.pages, tail)
	return tail
}

// ConsumeAllPages invokes callback with each page's live region in stream
// order, then drops it from the queue. It stops and returns the first error
// a callback reports. After a full pass the queue is empty. The backing
// array of the final drained pooled-size page is kept for reuse by the next
// AddWritablePage call of the same size.
func (b *PageBuffers) ConsumeAllPages(callback func(data []byte) error) error {
	for _, pg := range b.pages {
		if err := callback(pg.Live()); err != nil {
			return err
		}
		if pg.kind == KindPooled && len(pg.data) == b.pageSize {
			b.spare = pg.data
		}
	}
	b.pages = b.pages[:0]
	return nil
}

// AppendBytes copies data into a single new detached page appended to the
// queue. Used by AsyncPipe, which buffers whole writes rather than carving
// reservations out of an in-progress span.
func (b *PageBuffers) AppendBytes(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.pages = append(b.pages, newPage(cp, KindDetached))
}

// BufferedBytes returns the total number of live bytes across every queued
// page.
func (b *PageBuffers) BufferedBytes() int {
	total := 0
	for _, pg := range b.pages {
		total += pg.endOffset - pg.startOffset
	}
	return total
}

// DrainFront copies up to len(dst) buffered bytes, in order, out of the
// front of the queue, dropping fully consumed pages and trimming a
// partially consumed one. It returns the number of bytes copied.
func (b *PageBuffers) DrainFront(dst []byte) int {
	total := 0
	for len(b.pages) > 0 && total < len(dst) {
		pg := b.pages[0]
		live := pg.Live()
		n := copy(dst[total:], live)
		total += n
		if n == len(live) {
			b.pages = b.pages[1:]
		} else {
			pg.startOffset += n
		}
	}
	return total
}

// SetEOF marks the queue as having reached end-of-stream. Used only by
// AsyncPipe.
func (b *PageBuffers) SetEOF() {
	b.eofReached = true
}

// EOF reports whether SetEOF has been called.
func (b *PageBuffers) EOF() bool {
	return b.eofReached
}
