package pagestream_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/pagestream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 2 from spec.md §8: a delayed fixed-size write, carved before a
// run of large blocks are streamed past it, finalized afterward.
func TestReserveFixed_DelayedWriteAcrossLargeBlocks(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 64})
	s := h.Stream

	_, err := s.Write([]byte("initial output\n"))
	require.NoError(t, err)

	reservationStart := s.Pos()
	cursor := s.ReserveFixed(14)

	blockSizes := []int{12, 342, 2121, 23, 1, 34012, 932}
	var blocks [][]byte
	cumulative := 0
	for i, size := range blockSizes {
		block := bytes.Repeat([]byte{byte(i)}, size)
		blocks = append(blocks, block)

		_, err := s.Write(block)
		require.NoError(t, err)

		cumulative += size
		assert.Equal(t, cumulative, s.Pos()-reservationStart)
	}

	cursor.Finalize([]byte("delayed write\n"))

	out, err := s.GetOutput()
	require.NoError(t, err)

	want := append([]byte("initial output\n"), []byte("delayed write\n")...)
	for _, b := range blocks {
		want = append(want, b...)
	}
	assert.Equal(t, want, out)
}

// Boundary from spec.md §8: a reservation whose size exceeds the remaining
// span by one byte splits across a page boundary. This exercises the
// hardest transition in WriteCursor.Write: the cursor fills the first
// fragment on the page being abandoned, then crosses into the reserved
// prefix of the freshly allocated continuation page.
func TestReserveFixed_SplitAcrossPageBoundary(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 16})
	s := h.Stream

	_, err := s.Write([]byte("0123456789")) // 10 bytes written, 6 left in this page
	require.NoError(t, err)

	cursor := s.ReserveFixed(7) // exceeds the 6-byte remaining span by one
	_, err = s.Write([]byte("abcdefgh"))
	require.NoError(t, err)

	cursor.Finalize(bytes.Repeat([]byte("X"), 7))

	out, err := s.GetOutput()
	require.NoError(t, err)

	want := append([]byte("0123456789"), bytes.Repeat([]byte("X"), 7)...)
	want = append(want, []byte("abcdefgh")...)
	assert.Equal(t, want, out)
}

func TestReserveFixed_FitsInSpanDoesNotSplit(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 32})
	s := h.Stream

	_, err := s.Write([]byte("abc"))
	require.NoError(t, err)

	cursor := s.ReserveFixed(4)
	cursor.Finalize([]byte("WXYZ"))

	_, err = s.Write([]byte("def"))
	require.NoError(t, err)

	out, err := s.GetOutput()
	require.NoError(t, err)
	assert.Equal(t, "abcWXYZdef", string(out))
}

func TestReserveFixed_WritingPastReservationIsADefect(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 32})
	s := h.Stream

	cursor := s.ReserveFixed(2)
	assert.Panics(t, func() {
		_, _ = cursor.Write([]byte("abc"))
	})
}

func TestReserveFixed_FinalizeWrongSizeIsADefect(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 32})
	s := h.Stream

	cursor := s.ReserveFixed(4)
	assert.Panics(t, func() {
		cursor.Finalize([]byte("abc"))
	})
}

func TestReserveFixed_DrainBlockedWhileOutstanding(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 32})
	s := h.Stream

	_ = s.ReserveFixed(4)
	assert.Panics(t, func() {
		_ = s.Flush()
	})
}

// Scenario 4 from spec.md §8: a var-size reservation overestimate leaves no
// trace between neighbors.
func TestReserveVar_OverestimateLeavesNoTrace(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 64})
	s := h.Stream

	cursor := s.ReserveVar(16)
	cursor.Finalize([]byte("hello"))

	_, err := s.Write([]byte("|after"))
	require.NoError(t, err)

	out, err := s.GetOutput()
	require.NoError(t, err)
	assert.Equal(t, "hello|after", string(out))
}

func TestReserveVar_FinalizeTooLongIsADefect(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 32})
	s := h.Stream

	cursor := s.ReserveVar(4)
	assert.Panics(t, func() {
		cursor.Finalize([]byte("abcde"))
	})
}

func TestReserveVar_HeadOfFreshPageWhenLargerThanSpan(t *testing.T) {
	h := pagestream.NewMemoryStream(pagestream.Config{PageSize: 8})
	s := h.Stream

	_, err := s.Write([]byte("abcdefg"))
	require.NoError(t, err)

	cursor := s.ReserveVar(16)
	cursor.Finalize([]byte("0123456789abcdef"))

	_, err = s.Write([]byte("tail"))
	require.NoError(t, err)

	out, err := s.GetOutput()
	require.NoError(t, err)
	assert.Equal(t, "abcdefg0123456789abcdeftail", string(out))
}

func TestReserveVar_ForbiddenOnUnsafeMemoryStream(t *testing.T) {
	h := pagestream.NewUnsafeMemoryStream(make([]byte, 16))

	assert.Panics(t, func() {
		_ = h.Stream.ReserveVar(4)
	})
}
