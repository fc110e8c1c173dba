package port

import (
	"encoding/binary"
	"sync"

	"github.com/oy3o/midi"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Event is one PortMidi-style event: up to four message bytes packed into a
// uint32, first byte in the low byte.
type Event struct {
	Message   uint32
	Timestamp int32
}

// PackEvent packs up to four bytes, first byte lowest.
func PackEvent(b []byte) uint32 {
	var buf [4]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint32(buf[:])
}

// UnpackEvent is the inverse of PackEvent.
func UnpackEvent(v uint32) [4]byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return buf
}

// EventSink packs bytes into Events, four at a time.
type EventSink struct {
	write func(Event) error
	now   func() int32
}

// NewEventSink calls write for each packed event. now stamps events and may
// be nil.
func NewEventSink(write func(Event) error, now func() int32) *EventSink {
	if now == nil {
		now = func() int32 { return 0 }
	}
	return &EventSink{write: write, now: now}
}

func (s *EventSink) Send(data []byte) error {
	ts := s.now()
	for len(data) > 0 {
		n := min(4, len(data))
		if err := s.write(Event{Message: PackEvent(data[:n]), Timestamp: ts}); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// EventSource is a Source over a channel of packed events. Padding bytes are
// stripped before delivery: a short message keeps its status byte and
// arity, and a SysEx event is cut after SysExEnd.
type EventSource struct {
	events <-chan Event
	sysex  bool
}

// NewEventSource reads events until the channel is closed or Listen's stop
// func is called.
func NewEventSource(events <-chan Event) *EventSource {
	return &EventSource{events: events}
}

func (s *EventSource) Listen(onMsg func([]byte, int32), _ drivers.ListenConfig) (func(), error) {
	quit := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case ev, ok := <-s.events:
				if !ok {
					return
				}
				if b := s.decode(ev.Message); len(b) > 0 {
					onMsg(b, ev.Timestamp)
				}
			case <-quit:
				return
			}
		}
	}()
	return func() { once.Do(func() { close(quit) }) }, nil
}

// Paced reports true: events stay in the channel until the Input has room.
func (s *EventSource) Paced() bool { return true }

// decode runs on the Listen goroutine only.
func (s *EventSource) decode(v uint32) []byte {
	b := UnpackEvent(v)
	switch {
	case b[0] == byte(midi.SysEx):
		s.sysex = true
	case midi.IsRealTime(b[0]):
		return b[:1]
	case midi.IsStatus(b[0]):
		s.sysex = false
	}
	if s.sysex {
		for i, c := range b {
			if c == byte(midi.SysExEnd) {
				s.sysex = false
				return b[:i+1]
			}
		}
		return b[:]
	}
	e, ok := midi.Lookup(b[0])
	if !ok {
		return nil
	}
	return b[:1+max(e.Arity, 0)]
}
