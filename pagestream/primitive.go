package pagestream

import "encoding/binary"

// WritePrimitive writes the little-endian byte representation of value,
// which must be a fixed-size type binary.Write accepts (any of Go's integer
// and floating-point kinds, bool, or a fixed-size array/struct built from
// those), directly into the stream. This mirrors the teacher's own
// binary.Write(writer, binary.LittleEndian, value) idiom in
// file_systems/unixv1/format.go, with the stream itself standing in for the
// bytewriter.Writer used there.
func WritePrimitive(s *OutputStream, value any) error {
	return binary.Write(s, binary.LittleEndian, value)
}
