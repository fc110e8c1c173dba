package port

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Session owns a set of named ports. Closing the Session closes every port
// still open in it.
type Session struct {
	log   *zap.Logger
	ports *xsync.Map[string, io.Closer]

	mu     sync.Mutex
	closed bool
}

// NewSession returns an empty Session. A nil logger discards output.
func NewSession(log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		log:   log,
		ports: xsync.NewMap[string, io.Closer](),
	}
}

// OpenInput starts listening on src and registers the Input under name.
func (s *Session) OpenInput(name string, src Source, cfg Config) (*Input, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	in := newInput(name, s, cfg)
	in.paced = isPaced(src)
	if err := s.register(name, in); err != nil {
		return nil, err
	}
	stop, err := src.Listen(in.listen, listenConfig(cfg))
	if err != nil {
		s.release(name)
		return nil, fmt.Errorf("port: listen %s: %w", name, err)
	}
	in.setStop(stop)
	s.log.Debug("input opened", zap.String("port", name), zap.Int("queue", cfg.queueSize()))
	return in, nil
}

// OpenDriverInput opens in if needed and registers it under its String name.
func (s *Session) OpenDriverInput(in DriverIn, cfg Config) (*Input, error) {
	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			return nil, fmt.Errorf("port: open %s: %w", in, err)
		}
	}
	return s.OpenInput(in.String(), in, cfg)
}

// OpenOutput registers sink under name.
func (s *Session) OpenOutput(name string, sink Sink, cfg Config) (*Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := &Output{
		name:      name,
		sess:      s,
		log:       s.log.With(zap.String("port", name)),
		sink:      sink,
		eventSize: cfg.EventSize,
	}
	if err := s.register(name, out); err != nil {
		return nil, err
	}
	s.log.Debug("output opened", zap.String("port", name))
	return out, nil
}

// OpenDriverOutput opens out if needed and registers it under its String name.
func (s *Session) OpenDriverOutput(out DriverOut, cfg Config) (*Output, error) {
	if !out.IsOpen() {
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("port: open %s: %w", out, err)
		}
	}
	return s.OpenOutput(out.String(), out, cfg)
}

// Ports returns the names of open ports, sorted.
func (s *Session) Ports() []string {
	var names []string
	s.ports.Range(func(name string, _ io.Closer) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Close closes all open ports. Later opens fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var open []io.Closer
	s.ports.Range(func(_ string, c io.Closer) bool {
		open = append(open, c)
		return true
	})
	var errs []error
	for _, c := range open {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.Debug("session closed", zap.Int("ports", len(open)))
	return errors.Join(errs...)
}

func (s *Session) register(name string, c io.Closer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if _, loaded := s.ports.LoadOrStore(name, c); loaded {
		return fmt.Errorf("%w: %s", ErrPortExists, name)
	}
	return nil
}

func (s *Session) release(name string) {
	s.ports.Delete(name)
}
