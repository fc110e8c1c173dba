package midi

import (
	"bufio"
	"io"
)

// Writer provides a buffered writer for outbound messages. It tracks the first
// error that occurs; after an error, all subsequent writes become no-ops.
type Writer struct {
	w     *bufio.Writer
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
}

var (
	_ io.Writer     = (*Writer)(nil)
	_ io.ByteWriter = (*Writer)(nil)
)

// NewWriterSize creates a new Writer with a specified buffer size.
// It returns an error rather than double-buffer a smaller bufio.Writer.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	case *Writer:
		if bw.w.Size() >= size {
			return &Writer{w: bw.w}, nil
		}
		return nil, ErrAlreadyBuffered
	case *bufio.Writer:
		if bw.Size() >= size {
			return &Writer{w: bw}, nil
		}
		return nil, ErrAlreadyBuffered
	}

	return &Writer{w: bufio.NewWriterSize(w, size)}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteByte implements the io.ByteWriter interface.
func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.WriteByte(v); err != nil {
		w.err = err
		return err
	}
	w.count++
	return nil
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(buf []byte) {
	_, _ = w.Write(buf)
}

// WriteMessage writes the wire bytes of m. An invalid message latches ErrInvalidMessage.
func (w *Writer) WriteMessage(m Message) {
	if w.err != nil {
		return
	}
	if !m.valid() {
		w.err = ErrInvalidMessage
		return
	}
	for b := range Serialize(m) {
		if w.WriteByte(b) != nil {
			return
		}
	}
}

func (w *Writer) Size() int    { return w.w.Size() }
func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}
