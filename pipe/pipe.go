// Package pipe implements AsyncPipe: a single-producer/single-consumer byte
// pipe connecting a writer-side sink to a reader-side stream, with
// cooperative backpressure and end-of-stream signaling.
//
// The teacher repo has no async surface to ground this on (no
// goroutines/channels appear anywhere in disko's tree); the design instead
// follows spec.md §4.7/§9 directly: a PageBuffers shared between the two
// sides, and two one-shot wait slots realized here as buffered channels of
// size 1, matching the note that "because the pipe is SPSC, no queue is
// needed."
package pipe

import (
	"context"
	"sync"

	"github.com/dargueta/pagestream/pagebuf"
	"github.com/dargueta/pagestream/sink"
)

// DefaultPageSize is used for the pipe's internal PageBuffers when a Config
// leaves PageSize unset.
const DefaultPageSize = 4096 - 16

// DefaultMaxBufferedBytes is the default backpressure threshold: four pages
// worth of buffered bytes, per spec.md §6.
const DefaultMaxBufferedBytes = 4 * DefaultPageSize

// Config configures a new pipe.
type Config struct {
	// PageSize is the allocation hint handed to the internal page queue.
	// Each buffered write is stored as one page of its own length, so this
	// value neither bounds a single write nor changes how buffered bytes are
	// chunked. Zero means DefaultPageSize.
	PageSize int

	// MaxBufferedBytes is the backpressure threshold: once the pipe holds
	// at least this many unread bytes, WriteAsync suspends until the reader
	// drains some of them. Zero means DefaultMaxBufferedBytes.
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

// signal is a one-shot wakeup slot. A fire with no waiter parked is not
// dropped: it leaves one pending wakeup in the slot, and the next wait
// returns at once. Further fires before that wait are dropped, so at most
// one wakeup is pending at a time; a suspended waiter is woken once per fire.
type signal struct {
	ch chan struct{}
}

func newSignal() *signal {
	return &signal{ch: make(chan struct{}, 1)}
}

func (s *signal) fire() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *signal) wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AsyncPipe is a PageBuffers shared between a writer-side sink and a
// reader-side stream. Neither side may be driven from more than one
// goroutine concurrently; the pipe is single-producer/single-consumer.
type AsyncPipe struct {
	mu               sync.Mutex
	buffers          *pagebuf.PageBuffers
	maxBufferedBytes int
	waitingReader    *signal
	waitingWriter    *signal
}

// Pipe bundles the two ends of a new AsyncPipe: a Sink for the producer and
// a Reader for the consumer.
type Pipe struct {
	Writer *sink.Sink
	Reader *Reader
}

// New creates an AsyncPipe and returns its writer and reader sides.
func New(cfg Config) *Pipe {
	cfg = cfg.resolved()
	p := &AsyncPipe{
		buffers:          pagebuf.New(cfg.PageSize),
		maxBufferedBytes: cfg.MaxBufferedBytes,
		waitingReader:    newSignal(),
		waitingWriter:    newSignal(),
	}
	return &Pipe{
		Writer: &sink.Sink{
			WriteAsync: p.writeAsync,
			CloseAsync: p.closeAsync,
			CloseSync:  p.closeSync,
		},
		Reader: &Reader{pipe: p},
	}
}

// writeAsync implements the writer side's backpressure: while the pipe
// already holds enough bytes that adding data would cross the configured
// threshold, it suspends on waitingWriter. A write that starts when the
// pipe is empty is always accepted outright, even if it alone exceeds the
// threshold, so that a single oversized write can't deadlock the pipe.
func (p *AsyncPipe) writeAsync(ctx context.Context, data []byte) (int, error) {
	for {
		p.mu.Lock()
		buffered := p.buffers.BufferedBytes()
		if buffered == 0 || buffered+len(data) <= p.maxBufferedBytes {
			p.buffers.AppendBytes(data)
			p.mu.Unlock()
			p.waitingReader.fire()
			return len(data), nil
		}
		p.mu.Unlock()

		if err := p.waitingWriter.wait(ctx); err != nil {
			return 0, err
		}
	}
}

func (p *AsyncPipe) closeAsync(ctx context.Context) error {
	return p.closeSync()
}

func (p *AsyncPipe) closeSync() error {
	p.mu.Lock()
	p.buffers.SetEOF()
	p.mu.Unlock()
	p.waitingReader.fire()
	return nil
}

// Reader is the consuming side of an AsyncPipe.
type Reader struct {
	pipe *AsyncPipe
}

// ReadAsync delivers at least one buffered byte into dst, suspending until
// data arrives or the writer closes. On EOF with nothing left buffered it
// returns (0, nil); that is not an error, per spec.md §7.
func (r *Reader) ReadAsync(ctx context.Context, dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	p := r.pipe

	for {
		p.mu.Lock()
		if p.buffers.BufferedBytes() > 0 || p.buffers.EOF() {
			n := p.buffers.DrainFront(dst)
			p.mu.Unlock()
			p.waitingWriter.fire()
			return n, nil
		}
		p.mu.Unlock()

		p.waitingWriter.fire()
		if err := p.waitingReader.wait(ctx); err != nil {
			return 0, err
		}
	}
}
