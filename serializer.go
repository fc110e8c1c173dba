package midi

import (
	"io"
	"iter"
)

// Serialize returns the wire bytes of m. The sequence is lazy and may be ranged
// over any number of times. A status byte is always emitted; running status is
// never used on output. Any fixed-size framing a transport needs is applied by
// the transport after serialization.
//
// Serialize panics with ErrInvalidMessage if m was not built by a constructor
// or the Parser.
func Serialize(m Message) iter.Seq[byte] {
	if !m.valid() {
		panic(ErrInvalidMessage)
	}
	return func(yield func(byte) bool) {
		if !yield(m.Status()) {
			return
		}
		for _, b := range m.data {
			if !yield(b) {
				return
			}
		}
		if m.opcode == SysEx {
			yield(byte(SysExEnd))
		}
	}
}

// Size returns the number of wire bytes of m, framing included.
func (m Message) Size() int {
	if !m.valid() {
		return 0
	}
	n := 1 + len(m.data)
	if m.opcode == SysEx {
		n++
	}
	return n
}

// AppendBytes appends the wire bytes of m to dst.
func (m Message) AppendBytes(dst []byte) []byte {
	for b := range Serialize(m) {
		dst = append(dst, b)
	}
	return dst
}

// WriteTo implements io.WriterTo, writing m in a single Write call.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	if !m.valid() {
		return 0, ErrInvalidMessage
	}
	var small [3]byte
	buf := m.AppendBytes(small[:0])
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}
	if n < len(buf) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	if !m.valid() {
		return nil, ErrInvalidMessage
	}
	return MarshalBinaryGeneric(m)
}

// MarshalTo encodes m into p without allocating.
func (m Message) MarshalTo(p []byte) (int, error) {
	if !m.valid() {
		return 0, ErrInvalidMessage
	}
	return MarshalToGeneric(m, p)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. data must hold exactly
// one complete message and nothing of a second one; bytes the parser discards
// while resynchronizing are ignored.
func (m *Message) UnmarshalBinary(data []byte) error {
	var p Parser
	if _, err := p.ReadFrom(NewBytesReader(data)); err != nil {
		return err
	}
	switch p.Poll() {
	case 0:
		return ErrTruncatedData
	case 1:
		if p.Pending() {
			return ErrTrailingData
		}
		*m, _ = p.Next()
		return nil
	default:
		return ErrTrailingData
	}
}
