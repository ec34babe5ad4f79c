package pipe_test

import (
	"context"
	"testing"
	"time"

	"github.com/dargueta/pagestream/pipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_WriteThenRead(t *testing.T) {
	p := pipe.New(pipe.Config{})
	ctx := context.Background()

	n, err := p.Writer.WriteAsync(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	dst := make([]byte, 16)
	n, err = p.Reader.ReadAsync(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(dst[:n]))
}

func TestPipe_ReadSuspendsUntilWrite(t *testing.T) {
	p := pipe.New(pipe.Config{})
	ctx := context.Background()

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	dst := make([]byte, 16)
	go func() {
		n, err := p.Reader.ReadAsync(ctx, dst)
		done <- result{n, err}
	}()

	select {
	case <-done:
		t.Fatal("ReadAsync returned before any data was written")
	case <-time.After(20 * time.Millisecond):
	}

	_, err := p.Writer.WriteAsync(ctx, []byte("data"))
	require.NoError(t, err)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "data", string(dst[:r.n]))
	case <-time.After(time.Second):
		t.Fatal("ReadAsync never woke up after a write")
	}
}

func TestPipe_WriteSuspendsUntilReaderDrains(t *testing.T) {
	p := pipe.New(pipe.Config{MaxBufferedBytes: 8})
	ctx := context.Background()

	_, err := p.Writer.WriteAsync(ctx, make([]byte, 8))
	require.NoError(t, err)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := p.Writer.WriteAsync(ctx, []byte("more"))
		done <- result{n, err}
	}()

	select {
	case <-done:
		t.Fatal("second WriteAsync returned before the reader made room")
	case <-time.After(20 * time.Millisecond):
	}

	dst := make([]byte, 8)
	n, err := p.Reader.ReadAsync(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, 4, r.n)
	case <-time.After(time.Second):
		t.Fatal("WriteAsync never woke up after the reader drained")
	}
}

func TestPipe_OversizedWriteOnEmptyPipeNeverDeadlocks(t *testing.T) {
	p := pipe.New(pipe.Config{MaxBufferedBytes: 4})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	big := make([]byte, 64)
	n, err := p.Writer.WriteAsync(ctx, big)
	require.NoError(t, err)
	assert.Equal(t, 64, n)
}

func TestPipe_EOFReadsZeroExactlyOnceAfterDraining(t *testing.T) {
	p := pipe.New(pipe.Config{})
	ctx := context.Background()

	_, err := p.Writer.WriteAsync(ctx, []byte("ab"))
	require.NoError(t, err)
	require.NoError(t, p.Writer.CloseSync())

	dst := make([]byte, 16)
	n, err := p.Reader.ReadAsync(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(dst[:n]))

	n, err = p.Reader.ReadAsync(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPipe_CancelLeavesStateUnchanged(t *testing.T) {
	p := pipe.New(pipe.Config{MaxBufferedBytes: 4})
	ctx := context.Background()

	_, err := p.Writer.WriteAsync(ctx, make([]byte, 4))
	require.NoError(t, err)

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := p.Writer.WriteAsync(cancelCtx, []byte("xx"))
	assert.Error(t, err)
	assert.Equal(t, 0, n)

	dst := make([]byte, 4)
	n, err = p.Reader.ReadAsync(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
