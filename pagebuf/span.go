package pagebuf

// Span is a writable window inside exactly one page's backing array. It
// does not own memory; it is a view into that page's data between two
// offsets that shrinks from the front as bytes are written into it.
type Span struct {
	page  *Page
	start int
	end   int
}

// NewSpan builds a span over [start, end) of page's backing array. Exported
// so callers outside this package (the stream driver and its cursors) can
// construct spans directly when carving reservations.
func NewSpan(page *Page, start, end int) *Span {
	return &Span{page: page, start: start, end: end}
}

// Page returns the page this span is a view into.
func (s *Span) Page() *Page {
	return s.page
}

// Start returns the page-relative offset of the first writable byte.
func (s *Span) Start() int {
	return s.start
}

// End returns the page-relative offset one past the last writable byte.
func (s *Span) End() int {
	return s.end
}

// Len returns the number of bytes still writable in this span.
func (s *Span) Len() int {
	return s.end - s.start
}

// IsEmpty reports whether the span has no remaining capacity.
func (s *Span) IsEmpty() bool {
	return s.start >= s.end
}

// PutByte writes a single byte at the front of the span and advances it.
// The caller must check IsEmpty first; PutByte does not bounds-check.
func (s *Span) PutByte(b byte) {
	s.page.data[s.start] = b
	s.start++
}

// Put copies as much of b as fits into the span and advances it by the
// number of bytes copied.
func (s *Span) Put(b []byte) int {
	n := copy(s.page.data[s.start:s.end], b)
	s.start += n
	return n
}
