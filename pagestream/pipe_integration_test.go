package pagestream_test

import (
	"context"
	"testing"
	"time"

	"github.com/dargueta/pagestream"
	"github.com/dargueta/pagestream/pagestreamtest"
	"github.com/dargueta/pagestream/pipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 5 from spec.md §8: with maxBufferedBytes = 4*pageSize, a writer
// producing 10*pageSize bytes while the reader sleeps observes writeAsync
// suspend; once the reader starts draining, the writer resumes and the
// concatenated reads equal everything written.
func TestPipeWriterStream_BackpressureSuspendsWriterUntilReaderDrains(t *testing.T) {
	preset := pagestreamtest.GetPreset("tiny")
	pageSize := preset.PageSize
	const chunks = 10

	p := pipe.New(preset.PipeConfig())
	h := pagestream.NewPipeWriterStream(p, preset.Config())

	want := make([]byte, chunks*pageSize)
	for i := range want {
		want[i] = byte(i)
	}

	writeDone := make(chan error, 1)
	go func() {
		for i := 0; i < chunks; i++ {
			chunk := want[i*pageSize : (i+1)*pageSize]
			if _, err := h.Stream.Write(chunk); err != nil {
				writeDone <- err
				return
			}
			if err := h.Stream.Flush(); err != nil {
				writeDone <- err
				return
			}
		}
		writeDone <- h.Close(pagestream.WaitAsyncClose)
	}()

	// Four page-sized flushes (256 bytes) exactly fill maxBufferedBytes; the
	// fifth must suspend until the reader below starts draining.
	select {
	case err := <-writeDone:
		t.Fatalf("writer finished without the reader draining anything: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	ctx := context.Background()
	got := make([]byte, 0, len(want))
	buf := make([]byte, pageSize)
	for len(got) < len(want) {
		n, err := p.Reader.ReadAsync(ctx, buf)
		require.NoError(t, err)
		require.NotZero(t, n, "reader observed EOF before receiving all written bytes")
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, want, got)

	select {
	case err := <-writeDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("writer never finished after the reader drained everything")
	}

	n, err := p.Reader.ReadAsync(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "reader should observe EOF exactly once after the writer closes")
}
