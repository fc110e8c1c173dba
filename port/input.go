package port

import (
	"context"
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/oy3o/midi"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// Source delivers raw bytes from a device. Any gomidi drivers.In satisfies it.
// Chunks need not align with message boundaries.
type Source interface {
	Listen(onMsg func(data []byte, milliseconds int32), config drivers.ListenConfig) (stop func(), err error)
}

// DriverIn is a Source that must be opened before listening.
type DriverIn interface {
	Source
	Open() error
	IsOpen() bool
	String() string
}

var _ DriverIn = drivers.In(nil)

func listenConfig(cfg Config) drivers.ListenConfig {
	return drivers.ListenConfig{
		SysEx:       cfg.SysEx,
		TimeCode:    cfg.TimeCode,
		ActiveSense: cfg.ActiveSense,
	}
}

// Input parses bytes delivered by a Source into messages. The Source pushes
// chunks into a bounded queue; a full queue drops the chunk and counts it,
// unless the Source is a PacedSource, in which case delivery waits for room.
// Parsing, filtering and masking happen on the reading side.
//
// Input is safe for concurrent use.
type Input struct {
	name   string
	sess   *Session
	log    *zap.Logger
	filter Filter
	mask   ChannelMask

	chunks chan []byte
	notify chan struct{} // signalled after each queued chunk
	done   chan struct{}
	stop   func()
	paced  bool

	mu      sync.Mutex // guards closed against the listener
	closed  bool
	dropped atomic.Int64

	rmu    sync.Mutex // guards parser and ready
	parser midi.Parser
	ready  []midi.Message
}

func newInput(name string, sess *Session, cfg Config) *Input {
	return &Input{
		name:   name,
		sess:   sess,
		log:    sess.log.With(zap.String("port", name)),
		filter: cfg.filter(),
		mask:   cfg.mask(),
		chunks: make(chan []byte, cfg.queueSize()),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Name returns the name the Input was registered under.
func (in *Input) Name() string { return in.name }

// Dropped returns the number of chunks lost to a full queue.
func (in *Input) Dropped() int64 { return in.dropped.Load() }

// PacedSource is a Source that reads on demand, such as a file or pipe.
// Such a source can be made to wait, so its chunks are never dropped.
type PacedSource interface {
	Source
	Paced() bool
}

func isPaced(src Source) bool {
	p, ok := src.(PacedSource)
	return ok && p.Paced()
}

func (in *Input) listen(data []byte, _ int32) {
	if len(data) == 0 {
		return
	}
	chunk := slices.Clone(data)
	if in.paced {
		in.listenPaced(chunk)
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	select {
	case in.chunks <- chunk:
		in.signal()
	default:
		n := in.dropped.Add(1)
		in.log.Warn("input queue full, chunk dropped", zap.Int("bytes", len(chunk)), zap.Int64("dropped", n))
	}
}

// listenPaced blocks until the chunk is queued or the Input is closed.
func (in *Input) listenPaced(chunk []byte) {
	select {
	case <-in.done:
		return
	default:
	}
	select {
	case in.chunks <- chunk:
		in.signal()
	case <-in.done:
	}
}

func (in *Input) signal() {
	select {
	case in.notify <- struct{}{}:
	default:
	}
}

// feed parses one chunk into ready. The caller holds rmu.
func (in *Input) feed(chunk []byte) {
	in.parser.Write(chunk)
	for m := range in.parser.All() {
		if in.filter.Blocks(m) || !in.mask.Allows(m) {
			continue
		}
		in.ready = append(in.ready, m)
	}
}

// pump feeds every queued chunk. The caller holds rmu.
func (in *Input) pump() {
	for {
		select {
		case chunk := <-in.chunks:
			in.feed(chunk)
		default:
			return
		}
	}
}

func (in *Input) pop() (midi.Message, bool) {
	if len(in.ready) == 0 {
		return midi.Message{}, false
	}
	m := in.ready[0]
	in.ready[0] = midi.Message{}
	in.ready = in.ready[1:]
	if len(in.ready) == 0 {
		in.ready = nil
	}
	return m, true
}

// Poll parses everything received so far and returns how many messages are
// ready.
func (in *Input) Poll() int {
	in.rmu.Lock()
	defer in.rmu.Unlock()
	in.pump()
	return len(in.ready)
}

// TryRecv returns the next ready message without blocking.
func (in *Input) TryRecv() (midi.Message, bool) {
	in.rmu.Lock()
	defer in.rmu.Unlock()
	in.pump()
	return in.pop()
}

// Recv blocks until a message is ready, the Input is closed or ctx is done.
// Messages parsed before Close are still delivered.
func (in *Input) Recv(ctx context.Context) (midi.Message, error) {
	for {
		in.rmu.Lock()
		in.pump()
		m, ok := in.pop()
		more := len(in.ready) > 0
		in.rmu.Unlock()
		if ok {
			if more {
				// Wake any other waiting Recv.
				in.signal()
			}
			return m, nil
		}
		// Chunks are only taken from the queue under rmu, by pump, so they
		// reach the parser in arrival order.
		select {
		case <-in.notify:
		case <-in.done:
			if m, ok := in.TryRecv(); ok {
				return m, nil
			}
			return midi.Message{}, ErrClosed
		case <-ctx.Done():
			return midi.Message{}, ctx.Err()
		}
	}
}

// Messages drains the messages ready at the time of the call.
func (in *Input) Messages() iter.Seq[midi.Message] {
	in.rmu.Lock()
	in.pump()
	batch := in.ready
	in.ready = nil
	in.rmu.Unlock()

	return func(yield func(midi.Message) bool) {
		for len(batch) > 0 {
			m := batch[0]
			batch = batch[1:]
			if !yield(m) {
				return
			}
		}
	}
}

// setStop records the Source's stop func, calling it at once if the Input
// was closed while Listen was running.
func (in *Input) setStop(stop func()) {
	in.mu.Lock()
	closed := in.closed
	in.stop = stop
	in.mu.Unlock()
	if closed && stop != nil {
		stop()
	}
}

// Close stops the Source and unregisters the Input. It is idempotent.
func (in *Input) Close() error {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return nil
	}
	in.closed = true
	stop := in.stop
	in.mu.Unlock()

	if stop != nil {
		stop()
	}
	in.sess.release(in.name)
	in.log.Debug("input closed", zap.Int64("dropped", in.dropped.Load()))
	close(in.done)
	return nil
}
