// Package pagestreamtest provides fixtures shared by the module's test
// files: named page-size/buffering presets and an independently-built
// reference serialization to diff an OutputStream's actual output against.
package pagestreamtest

import (
	"encoding/binary"
	"io"

	"github.com/noxer/bytewriter"
	"github.com/xaionaro-go/bytesextra"
)

// ReferenceSerialize writes each value in order via encoding/binary into a
// fixed-size buffer and returns it. It exists so scenario tests can build an
// expected byte sequence independently of pagestream.WritePrimitive, rather
// than asserting a stream's output against itself.
func ReferenceSerialize(size int, values ...any) ([]byte, error) {
	buf := make([]byte, size)
	w := bytewriter.New(buf)
	for _, v := range values {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// NewFixedBuffer wraps a caller-owned, fixed-size byte slice as a seekable
// stream, for tests that want a destination they can read back from and
// compare against a drained sink without going through the filesystem.
func NewFixedBuffer(buf []byte) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(buf)
}
