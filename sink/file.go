package sink

import (
	"fmt"
	"os"

	"github.com/dargueta/pagestream/faults"
)

// fileSink wraps an *os.File with the bounds-checked write/flush/close
// idiom used throughout the teacher's physicalpage.go: every operation that
// can fail returns a wrapped error, never a bare one, so the caller always
// knows which sink operation produced it.
type fileSink struct {
	file *os.File
}

// NewFileSink wraps an already-open file as a Sink. Async slots are left
// nil: ordinary *os.File handles have no non-blocking write/flush/close, so
// the capability is absent rather than faked with a goroutine that still
// blocks an OS thread.
func NewFileSink(file *os.File) *Sink {
	fs := &fileSink{file: file}
	return &Sink{
		WriteSync: fs.writeSync,
		FlushSync: fs.flushSync,
		CloseSync: fs.closeSync,
	}
}

// CreateFileSink creates (or truncates) the file at path and wraps it as a
// Sink, returning the underlying *os.File so callers needing direct access
// (e.g. for Stat in tests) can still get at it.
func CreateFileSink(path string) (*Sink, *os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, faults.ErrIOFailed.WithMessage(
			fmt.Sprintf("create %q: %s", path, err.Error()),
		)
	}
	return NewFileSink(file), file, nil
}

func (fs *fileSink) writeSync(p []byte) (int, error) {
	n, err := fs.file.Write(p)
	if err != nil {
		return n, faults.ErrIOFailed.WrapError(err)
	}
	if n != len(p) {
		return n, faults.ErrIOFailed.WithMessage(
			fmt.Sprintf("short write: wrote %d of %d bytes", n, len(p)),
		)
	}
	return n, nil
}

func (fs *fileSink) flushSync() error {
	if err := fs.file.Sync(); err != nil {
		return faults.ErrIOFailed.WrapError(err)
	}
	return nil
}

func (fs *fileSink) closeSync() error {
	if err := fs.file.Close(); err != nil {
		return faults.ErrIOFailed.WrapError(err)
	}
	return nil
}
