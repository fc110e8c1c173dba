package midi

import (
	"fmt"
	"slices"
	"strings"
)

// Message is one complete unit of the MIDI protocol. It is an immutable value:
// the only ways to obtain one are the constructors in this file and the Parser,
// both of which guarantee the data length matches the opcode and every data
// byte has its high bit clear. The zero Message is invalid.
type Message struct {
	kind    Kind
	opcode  Opcode
	channel uint8
	data    []byte
}

// New builds a message for op. channel must be 0 for opcodes that do not carry
// one. The data is copied.
func New(op Opcode, channel uint8, data ...byte) (Message, error) {
	e, ok := op.entry()
	if !ok || op == SysExEnd {
		return Message{}, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, uint8(op))
	}
	if op.HasChannel() {
		if channel > channelMask {
			return Message{}, fmt.Errorf("%w: %d", ErrChannelRange, channel)
		}
	} else if channel != 0 {
		return Message{}, fmt.Errorf("%w: %s has no channel", ErrChannelRange, op)
	}
	if e.Arity != Variable && len(data) != e.Arity {
		return Message{}, fmt.Errorf("%w: %s takes %d data bytes, got %d", ErrDataLength, op, e.Arity, len(data))
	}
	for i, b := range data {
		if IsStatus(b) {
			return Message{}, fmt.Errorf("%w: 0x%02X at offset %d", ErrDataByte, b, i)
		}
	}
	return build(e, channel, slices.Clone(data)), nil
}

// MustNew is like New but panics on error.
func MustNew(op Opcode, channel uint8, data ...byte) Message {
	m, err := New(op, channel, data...)
	if err != nil {
		panic(err)
	}
	return m
}

// build assembles a message from a table entry, taking ownership of data.
func build(e Entry, channel uint8, data []byte) Message {
	kind := e.Kind
	if e.Opcode == ControlChange && len(data) > 0 && data[0] >= channelModeFirst {
		kind = ChannelMode
	}
	if len(data) == 0 {
		data = nil
	}
	return Message{kind: kind, opcode: e.Opcode, channel: channel, data: data}
}

func channelMessage(op Opcode, channel uint8, data ...byte) Message {
	e, _ := op.entry()
	for i := range data {
		data[i] &= dataMask
	}
	return build(e, channel&channelMask, data)
}

func NewNoteOff(channel, note, velocity uint8) Message {
	return channelMessage(NoteOff, channel, note, velocity)
}

func NewNoteOn(channel, note, velocity uint8) Message {
	return channelMessage(NoteOn, channel, note, velocity)
}

func NewPolyAftertouch(channel, note, pressure uint8) Message {
	return channelMessage(PolyAftertouch, channel, note, pressure)
}

// NewControlChange builds a control change. Controllers 120-127 yield a ChannelMode message.
func NewControlChange(channel, controller, value uint8) Message {
	return channelMessage(ControlChange, channel, controller, value)
}

func NewProgramChange(channel, program uint8) Message {
	return channelMessage(ProgramChange, channel, program)
}

func NewChannelAftertouch(channel, pressure uint8) Message {
	return channelMessage(ChannelAftertouch, channel, pressure)
}

// NewPitchBend builds a pitch bend from a signed amount in [-8192, 8191]; values
// outside the range are clamped.
func NewPitchBend(channel uint8, amount int) Message {
	lsb, msb := Split14(clamp(amount, -PitchBendCenter, PitchBendCenter-1) + PitchBendCenter)
	return channelMessage(PitchBend, channel, lsb, msb)
}

// NewSongPosition builds a song position pointer counted in MIDI beats
// (sixteenth notes). Values above 0x3FFF are clamped.
func NewSongPosition(beats uint16) Message {
	lsb, msb := Split14(min(beats, maxSongPosition))
	e, _ := SongPosition.entry()
	return build(e, 0, []byte{lsb, msb})
}

func NewSongSelect(song uint8) Message {
	e, _ := SongSelect.entry()
	return build(e, 0, []byte{DataByte(song)})
}

// NewQuarterFrame builds an MTC quarter frame from its message type (0-7) and value nibble.
func NewQuarterFrame(typ, value uint8) Message {
	e, _ := MTCQuarterFrame.entry()
	return build(e, 0, []byte{(typ&0x07)<<4 | value&0x0F})
}

func NewTuneRequest() Message {
	e, _ := TuneRequest.entry()
	return build(e, 0, nil)
}

// NewSysEx builds a system exclusive message. data excludes the 0xF0/0xF7 framing.
func NewSysEx(data ...byte) (Message, error) {
	return New(SysEx, 0, data...)
}

// NewRealTime builds a single-byte message for op, which must be one of the
// 0xF8-0xFF opcodes.
func NewRealTime(op Opcode) (Message, error) {
	if !IsRealTime(byte(op)) {
		return Message{}, fmt.Errorf("%w: %s is not a real-time opcode", ErrUnknownOpcode, op)
	}
	return New(op, 0)
}

func (m Message) Kind() Kind     { return m.kind }
func (m Message) Opcode() Opcode { return m.opcode }
func (m Message) Channel() uint8 { return m.channel }
func (m Message) Len() int       { return len(m.data) }
func (m Message) IsZero() bool   { return m.kind == 0 }

// Data returns a copy of the data bytes.
func (m Message) Data() []byte { return slices.Clone(m.data) }

func (m Message) valid() bool { return m.kind != 0 && m.opcode.Valid() }

func (m Message) dataAt(i int) uint8 {
	if i < len(m.data) {
		return m.data[i]
	}
	return 0
}

// Status returns the status byte as it appears on the wire, channel included.
// For SysEx it is the opening 0xF0.
func (m Message) Status() byte {
	if m.opcode.HasChannel() {
		return byte(m.opcode) | m.channel
	}
	return byte(m.opcode)
}

// Note returns the note number of NoteOn, NoteOff and PolyAftertouch messages.
func (m Message) Note() uint8 { return m.dataAt(0) }

// Velocity returns the velocity of NoteOn and NoteOff messages.
func (m Message) Velocity() uint8 { return m.dataAt(1) }

// Controller returns the controller number of a ControlChange.
func (m Message) Controller() uint8 { return m.dataAt(0) }

// Value returns the controller value of a ControlChange.
func (m Message) Value() uint8 { return m.dataAt(1) }

// Bend returns the signed pitch bend amount in [-8192, 8191].
func (m Message) Bend() int {
	return int(Join14(m.dataAt(0), m.dataAt(1))) - PitchBendCenter
}

// Beats returns the song position of a SongPosition message.
func (m Message) Beats() uint16 { return Join14(m.dataAt(0), m.dataAt(1)) }

func (m Message) String() string {
	if !m.valid() {
		return "Message(invalid)"
	}
	var sb strings.Builder
	sb.WriteString(m.opcode.String())
	if m.opcode.HasChannel() {
		fmt.Fprintf(&sb, " channel=%d", m.channel)
	}
	switch m.opcode {
	case NoteOn, NoteOff:
		fmt.Fprintf(&sb, " note=%d velocity=%d", m.Note(), m.Velocity())
	case PolyAftertouch:
		fmt.Fprintf(&sb, " note=%d pressure=%d", m.Note(), m.dataAt(1))
	case ControlChange:
		fmt.Fprintf(&sb, " controller=%d value=%d", m.Controller(), m.Value())
	case ProgramChange:
		fmt.Fprintf(&sb, " program=%d", m.dataAt(0))
	case ChannelAftertouch:
		fmt.Fprintf(&sb, " pressure=%d", m.dataAt(0))
	case PitchBend:
		fmt.Fprintf(&sb, " bend=%d", m.Bend())
	case SongPosition:
		fmt.Fprintf(&sb, " beats=%d", m.Beats())
	case SongSelect:
		fmt.Fprintf(&sb, " song=%d", m.dataAt(0))
	case MTCQuarterFrame:
		fmt.Fprintf(&sb, " type=%d value=%d", m.dataAt(0)>>4, m.dataAt(0)&0x0F)
	case SysEx:
		fmt.Fprintf(&sb, " len=%d data=% X", len(m.data), m.data)
	}
	return sb.String()
}
