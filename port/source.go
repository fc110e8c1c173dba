package port

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// ReaderSource is a Source over an io.Reader, such as a raw MIDI device file
// or a pipe. It reads on its own goroutine and ignores the ListenConfig;
// filtering is left to the Input.
type ReaderSource struct {
	r io.Reader

	listening atomic.Bool
	stopped   atomic.Bool
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// NewReaderSource wraps r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r, done: make(chan struct{})}
}

// Listen starts the read loop. Timestamps are milliseconds since Listen.
// Stopping closes r when it is an io.Closer, which unblocks a pending read.
func (rs *ReaderSource) Listen(onMsg func([]byte, int32), _ drivers.ListenConfig) (func(), error) {
	if !rs.listening.CompareAndSwap(false, true) {
		return nil, ErrAlreadyListening
	}
	go rs.run(onMsg, time.Now())
	return rs.stop, nil
}

func (rs *ReaderSource) run(onMsg func([]byte, int32), start time.Time) {
	defer close(rs.done)

	bufPtr := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(bufPtr)
	buf := *bufPtr

	for {
		n, err := rs.r.Read(buf)
		if n > 0 && !rs.stopped.Load() {
			onMsg(buf[:n], int32(time.Since(start).Milliseconds()))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !rs.stopped.Load() {
				rs.mu.Lock()
				rs.err = err
				rs.mu.Unlock()
			}
			return
		}
		if rs.stopped.Load() {
			return
		}
	}
}

func (rs *ReaderSource) stop() {
	if !rs.stopped.CompareAndSwap(false, true) {
		return
	}
	if c, ok := rs.r.(io.Closer); ok {
		c.Close()
	}
}

// Paced reports true: the read loop waits for the Input instead of
// outrunning it.
func (rs *ReaderSource) Paced() bool { return true }

// Done is closed when the read loop exits.
func (rs *ReaderSource) Done() <-chan struct{} { return rs.done }

// Err returns the read error that ended the loop, nil on EOF or stop.
func (rs *ReaderSource) Err() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.err
}
