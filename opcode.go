package midi

import "fmt"

// Kind classifies a message by the part of the protocol it belongs to.
type Kind uint8

const (
	ChannelVoice Kind = iota + 1
	ChannelMode
	SystemCommon
	SystemExclusive
	RealTime
	// Undefined is the kind of the reserved status bytes 0xF4, 0xF5, 0xF9 and 0xFD.
	Undefined
)

func (k Kind) String() string {
	switch k {
	case ChannelVoice:
		return "ChannelVoice"
	case ChannelMode:
		return "ChannelMode"
	case SystemCommon:
		return "SystemCommon"
	case SystemExclusive:
		return "SystemExclusive"
	case RealTime:
		return "RealTime"
	case Undefined:
		return "Undefined"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Opcode identifies a message's function independent of its channel.
// Its value is the canonical status byte with the channel nibble cleared.
type Opcode uint8

const (
	NoteOff           Opcode = 0x80
	NoteOn            Opcode = 0x90
	PolyAftertouch    Opcode = 0xA0
	ControlChange     Opcode = 0xB0
	ProgramChange     Opcode = 0xC0
	ChannelAftertouch Opcode = 0xD0
	PitchBend         Opcode = 0xE0

	SysEx           Opcode = 0xF0
	MTCQuarterFrame Opcode = 0xF1
	SongPosition    Opcode = 0xF2
	SongSelect      Opcode = 0xF3
	UndefinedF4     Opcode = 0xF4
	UndefinedF5     Opcode = 0xF5
	TuneRequest     Opcode = 0xF6
	SysExEnd        Opcode = 0xF7

	Clock         Opcode = 0xF8
	UndefinedF9   Opcode = 0xF9
	Start         Opcode = 0xFA
	Continue      Opcode = 0xFB
	Stop          Opcode = 0xFC
	UndefinedFD   Opcode = 0xFD
	ActiveSensing Opcode = 0xFE
	Reset         Opcode = 0xFF
)

// Variable is the arity of SysEx, whose length is set by the terminating SysExEnd.
const Variable = -1

// channelModeFirst is the lowest controller number reserved for channel mode messages.
const channelModeFirst = 0x78

// Entry is one row of the opcode table.
type Entry struct {
	Kind   Kind
	Opcode Opcode
	Arity  int // number of data bytes, or Variable
}

// entry is the exhaustive mapping from the closed Opcode set to its table row.
// ok is false for values that are not canonical status bytes.
func (op Opcode) entry() (e Entry, ok bool) {
	e.Opcode = op
	switch op {
	case NoteOff, NoteOn, PolyAftertouch, ControlChange, PitchBend:
		e.Kind, e.Arity = ChannelVoice, 2
	case ProgramChange, ChannelAftertouch:
		e.Kind, e.Arity = ChannelVoice, 1
	case SysEx:
		e.Kind, e.Arity = SystemExclusive, Variable
	case SongPosition:
		e.Kind, e.Arity = SystemCommon, 2
	case MTCQuarterFrame, SongSelect:
		e.Kind, e.Arity = SystemCommon, 1
	case TuneRequest, SysExEnd:
		e.Kind, e.Arity = SystemCommon, 0
	case Clock, Start, Continue, Stop, ActiveSensing, Reset:
		e.Kind, e.Arity = RealTime, 0
	case UndefinedF4, UndefinedF5, UndefinedF9, UndefinedFD:
		e.Kind, e.Arity = Undefined, 0
	default:
		return Entry{}, false
	}
	return e, true
}

// table holds the entry for every status byte, channel nibble included.
var table = func() (t [256]Entry) {
	for b := 0x80; b <= 0xFF; b++ {
		op := Opcode(b)
		if b < 0xF0 {
			op = Opcode(b & 0xF0)
		}
		e, ok := op.entry()
		if !ok {
			panic(fmt.Sprintf("midi: status byte 0x%02X has no opcode", b))
		}
		t[b] = e
	}
	return t
}()

// Lookup returns the table entry for a raw status byte. For channel messages
// (0x80-0xEF) the channel nibble is ignored. Data bytes report ok == false.
func Lookup(status byte) (Entry, bool) {
	if !IsStatus(status) {
		return Entry{}, false
	}
	return table[status], true
}

// IsStatus reports whether b has its high bit set.
func IsStatus(b byte) bool { return b&0x80 != 0 }

// IsRealTime reports whether b is a single-byte system real-time status (0xF8-0xFF).
func IsRealTime(b byte) bool { return b >= 0xF8 }

// Valid reports whether op is a canonical status byte.
func (op Opcode) Valid() bool {
	_, ok := op.entry()
	return ok
}

// Kind returns the kind of op. ControlChange reports ChannelVoice; whether a
// particular message is ChannelMode depends on its controller number.
func (op Opcode) Kind() Kind {
	e, _ := op.entry()
	return e.Kind
}

// Arity returns the number of data bytes op carries, or Variable for SysEx.
func (op Opcode) Arity() int {
	e, _ := op.entry()
	return e.Arity
}

// HasChannel reports whether op carries a channel in its status byte.
func (op Opcode) HasChannel() bool { return op >= NoteOff && op < SysEx }

var opcodeNames = map[Opcode]string{
	NoteOff:           "NoteOff",
	NoteOn:            "NoteOn",
	PolyAftertouch:    "PolyAftertouch",
	ControlChange:     "ControlChange",
	ProgramChange:     "ProgramChange",
	ChannelAftertouch: "ChannelAftertouch",
	PitchBend:         "PitchBend",
	SysEx:             "SysEx",
	MTCQuarterFrame:   "MTCQuarterFrame",
	SongPosition:      "SongPosition",
	SongSelect:        "SongSelect",
	UndefinedF4:       "UndefinedF4",
	UndefinedF5:       "UndefinedF5",
	TuneRequest:       "TuneRequest",
	SysExEnd:          "SysExEnd",
	Clock:             "Clock",
	UndefinedF9:       "UndefinedF9",
	Start:             "Start",
	Continue:          "Continue",
	Stop:              "Stop",
	UndefinedFD:       "UndefinedFD",
	ActiveSensing:     "ActiveSensing",
	Reset:             "Reset",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", uint8(op))
}
