package port

import (
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// --- Fakes ---

type fakeSource struct {
	mu      sync.Mutex
	onMsg   func([]byte, int32)
	cfg     drivers.ListenConfig
	stopped int
	err     error
}

func (f *fakeSource) Listen(onMsg func([]byte, int32), cfg drivers.ListenConfig) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMsg = onMsg
	f.cfg = cfg
	return func() {
		f.mu.Lock()
		f.stopped++
		f.mu.Unlock()
	}, nil
}

func (f *fakeSource) push(b ...byte) {
	f.mu.Lock()
	onMsg := f.onMsg
	f.mu.Unlock()
	onMsg(b, 0)
}

func (f *fakeSource) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// pacedSource is a fakeSource whose pushes wait for queue room.
type pacedSource struct {
	fakeSource
}

func (p *pacedSource) Paced() bool { return true }

type fakeDriver struct {
	fakeSource
	name    string
	open    bool
	openErr error
}

func (d *fakeDriver) Open() error {
	if d.openErr != nil {
		return d.openErr
	}
	d.open = true
	return nil
}

func (d *fakeDriver) IsOpen() bool   { return d.open }
func (d *fakeDriver) String() string { return d.name }

type fakeSink struct {
	mu   sync.Mutex
	sent [][]byte
	err  error
}

func (f *fakeSink) Send(data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

type fakeDriverOut struct {
	fakeSink
	name string
	open bool
}

func (d *fakeDriverOut) Open() error    { d.open = true; return nil }
func (d *fakeDriverOut) IsOpen() bool   { return d.open }
func (d *fakeDriverOut) String() string { return d.name }
