package pagebuf_test

import (
	"testing"

	"github.com/dargueta/pagestream/pagebuf"
	"github.com/stretchr/testify/assert"
)

func TestPage_SplitPendingLifecycle(t *testing.T) {
	buf := pagebuf.New(16)
	pg := buf.AddWritablePage(0)
	assert.False(t, pg.IsSplitPending())

	pg.MarkSplitPending(6)
	assert.True(t, pg.IsSplitPending())
	assert.Equal(t, 6, pg.PendingPrefixLen())
	assert.Panics(t, func() { pg.Live() })

	pg.ResolveSplitPrefix()
	assert.False(t, pg.IsSplitPending())
	assert.NotPanics(t, func() { pg.Live() })
}

func TestPage_DetachableKind(t *testing.T) {
	buf := pagebuf.New(16)
	pooled := buf.AddWritablePage(0)
	detached := buf.AddWritablePage(64)

	assert.False(t, pooled.Detachable())
	assert.True(t, detached.Detachable())
}

func TestPage_CapReflectsBackingArray(t *testing.T) {
	buf := pagebuf.New(16)
	pg := buf.AddWritablePage(0)
	assert.Equal(t, 16, pg.Cap())
}
