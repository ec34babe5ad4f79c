package pagestream

import (
	"os"

	"github.com/dargueta/pagestream/pagebuf"
	"github.com/dargueta/pagestream/pipe"
	"github.com/dargueta/pagestream/sink"
)

func newBufferedStream(sk *sink.Sink, cfg Config) *OutputStream {
	cfg = cfg.resolved()
	buffers := pagebuf.New(cfg.PageSize)
	s := &OutputStream{buffers: buffers, sink: sk}
	s.span = buffers.GetWritableSpan()
	return s
}

// NewMemoryStream creates a stream with no sink at all: every byte written
// stays buffered until GetOutput or ConsumeOutputs is called.
func NewMemoryStream(cfg Config) *Handle {
	return &Handle{Stream: newBufferedStream(nil, cfg)}
}

// NewMemoryStreamWithCapacity creates a memory stream backed by a single
// pre-sized page that is guaranteed detachable, so that a write fitting
// entirely inside capacity lets GetOutput (per spec.md §4.5) hand back the
// page's own backing array instead of copying it into a fresh one. Useful
// when the caller knows the output size up front and wants to avoid the
// allocation GetOutput otherwise performs when the buffered output spans
// more than one page or sits on a recyclable (pooled) one.
func NewMemoryStreamWithCapacity(capacity int) *Handle {
	buffers := pagebuf.New(DefaultPageSize)
	pg := buffers.AddDetachedPage(capacity)
	s := &OutputStream{buffers: buffers}
	s.span = pagebuf.NewSpan(pg, 0, pg.Cap())
	return &Handle{Stream: s}
}

// NewUnsafeMemoryStream wraps a caller-owned, already-sized byte slice as a
// stream with a single fixed page and no page queue behind it. Writing past
// the end of buf is a defect, not an error: the caller is assumed to have
// sized it correctly ahead of time. ReserveVar is unavailable on a stream
// built this way, since there's no page queue to carve a reservation page
// out of.
func NewUnsafeMemoryStream(buf []byte) *Handle {
	pg := pagebuf.WrapFixed(buf)
	return &Handle{
		Stream: &OutputStream{
			span:   pagebuf.NewSpan(pg, 0, len(buf)),
			unsafe: true,
		},
	}
}

// NewFileStream creates (or truncates) the file at path and returns a
// stream that drains completed pages to it synchronously.
func NewFileStream(path string, cfg Config) (*Handle, error) {
	sk, _, err := sink.CreateFileSink(path)
	if err != nil {
		return nil, err
	}
	return &Handle{Stream: newBufferedStream(sk, cfg)}, nil
}

// NewFileHandleStream wraps an already-open file as a stream's sink. Useful
// when the caller needs to keep the *os.File around (e.g. to Stat it later).
func NewFileHandleStream(file *os.File, cfg Config) *Handle {
	sk := sink.NewFileSink(file)
	return &Handle{Stream: newBufferedStream(sk, cfg)}
}

// NewStreamWithSink wraps an arbitrary sink.Sink as a buffered stream. The
// other named constructors in this file cover memory, file, and pipe sinks;
// this one is
// the escape hatch for a custom sink implementation.
func NewStreamWithSink(sk *sink.Sink, cfg Config) *Handle {
	return &Handle{Stream: newBufferedStream(sk, cfg)}
}

// NewPipeWriterStream creates a stream whose sink is the writer side of p,
// draining completed pages across the pipe to whatever is reading from
// p.Reader. The returned Handle's Close drains and closes the pipe, which
// in turn lets the reader observe end-of-stream.
func NewPipeWriterStream(p *pipe.Pipe, cfg Config) *Handle {
	return &Handle{Stream: newBufferedStream(p.Writer, cfg)}
}
