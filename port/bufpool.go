package port

import "sync"

// readChunkSize is small because MIDI arrives a few bytes at a time; a read
// returns as soon as any bytes are available.
const readChunkSize = 512

var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, readChunkSize)
		return &b
	},
}
