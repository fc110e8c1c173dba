package midi

import "golang.org/x/exp/constraints"

const (
	dataMask    = 0x7F
	channelMask = 0x0F
)

// DataByte truncates v to a 7-bit data byte.
func DataByte[T constraints.Integer](v T) byte { return byte(v) & dataMask }

// Split14 splits a 14-bit value into its LSB and MSB data bytes, the order
// they travel on the wire for PitchBend and SongPosition.
func Split14[T constraints.Integer](v T) (lsb, msb byte) {
	return DataByte(v), DataByte(v >> 7)
}

// Join14 combines an LSB and MSB data byte pair into a 14-bit value.
func Join14(lsb, msb byte) uint16 {
	return uint16(msb&dataMask)<<7 | uint16(lsb&dataMask)
}

// maxSongPosition is the largest 14-bit song position.
const maxSongPosition = 0x3FFF

// PitchBendCenter is the 14-bit pitch bend value meaning "no bend".
const PitchBendCenter = 0x2000

// clamp bounds v to [lo, hi].
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
