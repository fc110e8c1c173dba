package midi

import (
	"encoding"
	"io"
)

// Sizer is an interface for types that can report their wire size.
type Sizer interface {
	// Size returns the number of bytes the value occupies on the wire.
	Size() int
}

// Marshaler defines the ways a message can be turned into wire bytes.
type Marshaler interface {
	encoding.BinaryMarshaler // Method: MarshalBinary() ([]byte, error)
	io.WriterTo              // Method: WriteTo(writer io.Writer) (int64, error)

	// MarshalTo encodes into a pre-allocated buffer, returning
	// io.ErrShortBuffer if it is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler decodes exactly one message from a byte slice.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler // Method: UnmarshalBinary(data []byte) error
}

// Codec aggregates the encoding and decoding interfaces.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}

var (
	_ Codec         = (*Message)(nil)
	_ io.Writer     = (*Parser)(nil)
	_ io.ReaderFrom = (*Parser)(nil)
)
