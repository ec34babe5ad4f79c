// Package pagebuf implements the segmented (paged) write buffer that backs
// an output stream: a forward-only queue of fixed-capacity byte pages that
// supports carving reservation windows out of the page currently being
// written and backfilling them later without disturbing surrounding data.
package pagebuf

// Kind distinguishes how a Page's backing array may be handed out once its
// bytes are ready to leave the buffer.
type Kind int

const (
	// KindPooled pages come from a reused backing array (see
	// [PageBuffers.ConsumeAllPages]); their bytes must be copied out on extraction
	// because the same array will be handed to a future page once this one
	// is consumed.
	KindPooled Kind = iota

	// KindDetached pages own a backing array that was allocated just for
	// them and will never be recycled, so their contents can be handed to
	// a caller directly with no copy.
	KindDetached
)

// Page is a contiguous byte region with a declared live sub-range
// [startOffset, endOffset). Per spec.md §3, startOffset is non-negative
// except during the "split cursor" transient, where it holds the negative
// byte count of a prefix reserved by a fixed-size cursor that began on the
// previous page; in that transient endOffset is not yet meaningful.
type Page struct {
	data        []byte
	startOffset int
	endOffset   int
	kind        Kind

	// open is true from creation until EndLastPageAt/SplitLastPageAt fixes
	// this page's endOffset for good. It exists because endOffset landing on
	// len(data) doesn't by itself mean "still growable": a page can also be
	// explicitly finalized at exactly its own capacity.
	open bool
}

func newPage(data []byte, kind Kind) *Page {
	return &Page{
		data:        data,
		startOffset: 0,
		endOffset:   len(data),
		kind:        kind,
		open:        true,
	}
}

// Cap returns the total capacity of the page's backing array.
func (p *Page) Cap() int {
	return len(p.data)
}

// Live returns the page's committed live region, data[startOffset:endOffset].
// It panics if called during the split-cursor transient (startOffset < 0),
// since the live region isn't meaningful until the split is resolved.
func (p *Page) Live() []byte {
	if p.startOffset < 0 {
		panic("pagebuf: Live() called on a page with an unresolved split-cursor prefix")
	}
	return p.data[p.startOffset:p.endOffset]
}

// IsSplitPending reports whether this page's front bytes are still reserved
// by an unfinished fixed-size cursor continuation.
func (p *Page) IsSplitPending() bool {
	return p.startOffset < 0
}

// MarkSplitPending records that the front prefixLen bytes of this freshly
// allocated page are reserved for the continuation of a fixed-size cursor
// that began on the previous page. prefixLen must be positive and must be
// called before anything else touches the page.
func (p *Page) MarkSplitPending(prefixLen int) {
	if prefixLen <= 0 {
		panic("pagebuf: MarkSplitPending requires a positive prefix length")
	}
	p.startOffset = -prefixLen
}

// PendingPrefixLen returns the number of bytes at the front of the page that
// are reserved by a split cursor continuation. It is only meaningful when
// IsSplitPending is true.
func (p *Page) PendingPrefixLen() int {
	return -p.startOffset
}

// ResolveSplitPrefix clears the split-cursor marker, making the full page
// (from byte 0) live. Called once the cursor that reserved the prefix has
// written its continuation.
func (p *Page) ResolveSplitPrefix() {
	p.startOffset = 0
}

// IsOpen reports whether this page's endOffset is still free to move, i.e.
// neither EndLastPageAt nor SplitLastPageAt has fixed it yet.
func (p *Page) IsOpen() bool {
	return p.open
}

// close marks the page as no longer growable; its endOffset is now final.
func (p *Page) close() {
	p.open = false
}

// Detachable reports whether the page's backing array can be handed to a
// caller directly without copying.
func (p *Page) Detachable() bool {
	return p.kind == KindDetached
}

// StartOffset returns the page's current live-region start. Exported for the
// stream driver, which needs it to decide whether a page can be detached
// zero-copy in getOutput.
func (p *Page) StartOffset() int {
	return p.startOffset
}

// TrimEnd shrinks this page's live region to end at addr. Used by a var-size
// cursor's Finalize to correct an overestimated tail reservation down to the
// actual number of bytes written.
func (p *Page) TrimEnd(addr int) {
	p.endOffset = addr
}

// TrimStart shrinks this page's live region to begin at addr, discarding the
// unused head of an overestimated var-size reservation that started at the
// front of the page.
func (p *Page) TrimStart(addr int) {
	p.startOffset = addr
}

// WriteAt copies data into the page's backing array starting at offset. It
// does not touch startOffset/endOffset; the caller is responsible for those.
func (p *Page) WriteAt(offset int, data []byte) {
	copy(p.data[offset:], data)
}

// WrapFixed builds a single detached page over a caller-owned backing array,
// with its whole capacity initially live. Used by the unsafe-memory stream
// constructor, which treats the entire fixed region as one page.
func WrapFixed(data []byte) *Page {
	return newPage(data, KindDetached)
}
