package port

import (
	"fmt"
	"strings"

	"github.com/oy3o/midi"
)

// Filter is a bitmask of message types an Input drops while draining. The bit
// layout follows PortMidi: system bytes use bit (status - 0xF0), channel
// messages use bit (0x10 + status>>4).
type Filter uint32

const (
	FilterSysEx        Filter = 1 << 0x00 // 0xF0
	FilterMTC          Filter = 1 << 0x01 // 0xF1
	FilterSongPosition Filter = 1 << 0x02 // 0xF2
	FilterSongSelect   Filter = 1 << 0x03 // 0xF3
	FilterTune         Filter = 1 << 0x06 // 0xF6
	FilterClock        Filter = 1 << 0x08 // 0xF8
	FilterTick         Filter = 1 << 0x09 // 0xF9
	FilterPlay         Filter = 1<<0x0A | 1<<0x0B | 1<<0x0C
	FilterUndefined    Filter = 1 << 0x0D // 0xFD
	FilterActive       Filter = 1 << 0x0E // 0xFE
	FilterReset        Filter = 1 << 0x0F // 0xFF

	FilterNote              Filter = 1<<0x18 | 1<<0x19
	FilterPolyAftertouch    Filter = 1 << 0x1A
	FilterControl           Filter = 1 << 0x1B
	FilterProgram           Filter = 1 << 0x1C
	FilterChannelAftertouch Filter = 1 << 0x1D
	FilterPitchBend         Filter = 1 << 0x1E

	FilterRealTime     = FilterActive | FilterSysEx | FilterClock | FilterPlay | FilterUndefined | FilterReset | FilterTick
	FilterAftertouch   = FilterChannelAftertouch | FilterPolyAftertouch
	FilterSystemCommon = FilterMTC | FilterSongPosition | FilterSongSelect | FilterTune
)

var filterNames = map[string]Filter{
	"sysex":              FilterSysEx,
	"mtc":                FilterMTC,
	"song-position":      FilterSongPosition,
	"song-select":        FilterSongSelect,
	"tune":               FilterTune,
	"clock":              FilterClock,
	"tick":               FilterTick,
	"play":               FilterPlay,
	"undefined":          FilterUndefined,
	"active":             FilterActive,
	"reset":              FilterReset,
	"note":               FilterNote,
	"poly-aftertouch":    FilterPolyAftertouch,
	"control":            FilterControl,
	"program":            FilterProgram,
	"channel-aftertouch": FilterChannelAftertouch,
	"pitch-bend":         FilterPitchBend,
	"realtime":           FilterRealTime,
	"aftertouch":         FilterAftertouch,
	"system-common":      FilterSystemCommon,
}

// ParseFilter combines filter names such as "clock" or "active" into a Filter.
func ParseFilter(names []string) (Filter, error) {
	var f Filter
	for _, name := range names {
		bits, ok := filterNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
		f |= bits
	}
	return f, nil
}

func filterBit(status byte) Filter {
	if status >= 0xF0 {
		return 1 << (status - 0xF0)
	}
	return 1 << (0x10 + status>>4)
}

// Blocks reports whether m is removed by the filter.
func (f Filter) Blocks(m midi.Message) bool {
	return f&filterBit(m.Status()) != 0
}

// ChannelMask selects channels an Input delivers; bit n enables channel n.
// Messages without a channel are never masked.
type ChannelMask uint16

const AllChannels ChannelMask = 0xFFFF

// Allows reports whether m passes the mask.
func (c ChannelMask) Allows(m midi.Message) bool {
	if !m.Opcode().HasChannel() {
		return true
	}
	return c&(1<<m.Channel()) != 0
}
