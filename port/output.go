package port

import (
	"fmt"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/oy3o/midi"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// Sink accepts serialized bytes. Any gomidi drivers.Out satisfies it.
type Sink interface {
	Send(data []byte) error
}

// DriverOut is a Sink that must be opened before sending.
type DriverOut interface {
	Sink
	Open() error
	IsOpen() bool
	String() string
}

var _ DriverOut = drivers.Out(nil)

// Output serializes messages to a Sink. Sends are serialized.
type Output struct {
	name      string
	sess      *Session
	log       *zap.Logger
	sink      Sink
	eventSize int

	mu     sync.Mutex
	closed bool
	sent   atomic.Int64
}

// Name returns the name the Output was registered under.
func (o *Output) Name() string { return o.name }

// Sent returns the number of messages delivered to the Sink.
func (o *Output) Sent() int64 { return o.sent.Load() }

// Send writes m with an explicit status byte. When EventSize is set the bytes
// go to the Sink in chunks of at most that size.
func (o *Output) Send(m midi.Message) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	for chunk := range chunks(data, o.eventSize) {
		if err := o.sink.Send(chunk); err != nil {
			o.log.Warn("send failed", zap.Stringer("message", m), zap.Error(err))
			return fmt.Errorf("port: send %s: %w", o.name, err)
		}
	}
	o.sent.Add(1)
	return nil
}

func chunks(data []byte, size int) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		if size <= 0 {
			yield(data)
			return
		}
		for len(data) > 0 {
			n := min(size, len(data))
			if !yield(data[:n]) {
				return
			}
			data = data[n:]
		}
	}
}

// Close unregisters the Output. The Sink is left open.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.sess.release(o.name)
	o.log.Debug("output closed", zap.Int64("sent", o.sent.Load()))
	return nil
}

// WriterSink sends bytes to an io.Writer, flushing after each call.
type WriterSink struct {
	w *midi.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) (*WriterSink, error) {
	mw, err := midi.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &WriterSink{w: mw}, nil
}

func (s *WriterSink) Send(data []byte) error {
	s.w.WriteBytes(data)
	return s.w.Flush()
}
