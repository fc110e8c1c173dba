package midi

import (
	"bufio"
	"io"
)

// defaultReadSize keeps reads from a live device small; MIDI arrives a few bytes at a time.
const defaultReadSize = 256

// Reader adapts an io.Reader into the byte-at-a-time source the Parser consumes.
// It tracks the first error; subsequent reads become no-ops.
type Reader struct {
	r     io.ByteReader
	count int64 // total bytes read
	err   error // first error encountered
}

var _ io.ByteReader = (*Reader)(nil)

// NewReaderSize creates a new Reader. Readers that already implement
// io.ByteReader are used as they are; anything else is wrapped in a
// bufio.Reader of the given size.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	case *bufio.Reader:
		if reader.Size() < size {
			return nil, ErrAlreadyBuffered
		}
		return &Reader{r: reader}, nil
	case io.ByteReader:
		return &Reader{r: reader}, nil
	}

	if size <= 0 {
		size = defaultReadSize
	}
	return &Reader{r: bufio.NewReaderSize(r, size)}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, 0)
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = err
		return 0, err
	}
	r.count++
	return b, nil
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }
func (r *Reader) IsEOF() bool  { return r.err == io.EOF }

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}
