package midi

import (
	"io"
	"iter"
	"slices"
)

// compactThreshold is how many delivered messages may sit at the head of the
// queue before it is shifted down.
const compactThreshold = 64

// Parser turns a raw MIDI byte stream into messages. Bytes are pushed with Feed
// (or Write / ReadFrom); completed messages queue up until drained with Next
// or All. Malformed input is never an error: stray data bytes, an unterminated
// message cut off by a new status byte, and a SysExEnd outside SysEx are
// dropped silently so the parser resynchronizes on the next status byte.
//
// A Parser is owned by one goroutine; it does no locking. The zero value is
// ready to use.
type Parser struct {
	status byte    // running status, 0 when none
	entry  Entry   // table row of status
	data   [2]byte // data bytes of the in-progress fixed-size message
	n      int     // len of data collected so far

	sysex  bool
	sysbuf []byte

	queue []Message
	head  int
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed advances the state machine by one byte.
func (p *Parser) Feed(b byte) {
	switch {
	case IsRealTime(b), b == byte(UndefinedF4), b == byte(UndefinedF5):
		// May arrive anywhere, including inside another message or SysEx,
		// and leaves all other state untouched.
		p.emit(build(table[b], 0, nil))

	case b == byte(SysEx):
		p.n = 0
		p.sysex = true
		p.sysbuf = p.sysbuf[:0]

	case b == byte(SysExEnd):
		p.n = 0
		if p.sysex {
			p.sysex = false
			p.emit(build(table[SysEx], 0, slices.Clone(p.sysbuf)))
		}

	case IsStatus(b):
		// An unterminated SysEx is abandoned.
		p.sysex = false
		p.status = b
		p.entry = table[b]
		p.n = 0
		if p.entry.Arity == 0 {
			p.emit(build(p.entry, p.channel(), nil))
		}

	case p.sysex:
		p.sysbuf = append(p.sysbuf, b)

	case p.status != 0 && p.entry.Arity > 0:
		p.data[p.n] = b
		p.n++
		if p.n == p.entry.Arity {
			p.emit(build(p.entry, p.channel(), slices.Clone(p.data[:p.n])))
			p.n = 0
		}
	}
}

func (p *Parser) channel() uint8 {
	if p.entry.Opcode.HasChannel() {
		return p.status & channelMask
	}
	return 0
}

func (p *Parser) emit(m Message) {
	p.queue = append(p.queue, m)
}

// Write feeds every byte of b. It never fails.
func (p *Parser) Write(b []byte) (int, error) {
	for _, c := range b {
		p.Feed(c)
	}
	return len(b), nil
}

// ReadFrom feeds bytes from r until it returns an error. io.EOF ends the
// stream and is not reported.
func (p *Parser) ReadFrom(r io.Reader) (int64, error) {
	rd, err := NewReader(r)
	if err != nil {
		return 0, err
	}
	for {
		b, err := rd.ReadByte()
		if err != nil {
			if err == io.EOF {
				return rd.Count(), nil
			}
			return rd.Count(), err
		}
		p.Feed(b)
	}
}

// Poll returns the number of completed messages not yet delivered.
func (p *Parser) Poll() int {
	return len(p.queue) - p.head
}

// Next removes and returns the oldest completed message. ok is false when
// there is none.
func (p *Parser) Next() (m Message, ok bool) {
	if p.head == len(p.queue) {
		return Message{}, false
	}
	m = p.queue[p.head]
	p.queue[p.head] = Message{}
	p.head++

	switch {
	case p.head == len(p.queue):
		p.queue = p.queue[:0]
		p.head = 0
	case p.head >= compactThreshold && p.head*2 >= len(p.queue):
		k := copy(p.queue, p.queue[p.head:])
		clear(p.queue[k:])
		p.queue = p.queue[:k]
		p.head = 0
	}
	return m, true
}

// All returns a sequence that drains the messages completed at the time of
// the call, oldest first. Messages completed later are left for the next
// call. Ranging over the sequence again continues where the last range
// stopped; nothing is delivered twice.
func (p *Parser) All() iter.Seq[Message] {
	remaining := p.Poll()
	return func(yield func(Message) bool) {
		for remaining > 0 {
			m, ok := p.Next()
			if !ok {
				return
			}
			remaining--
			if !yield(m) {
				return
			}
		}
	}
}

// RunningStatus returns the current running status byte, if any.
func (p *Parser) RunningStatus() (byte, bool) {
	return p.status, p.status != 0
}

// InSysEx reports whether a SysEx block is open.
func (p *Parser) InSysEx() bool { return p.sysex }

// Pending reports whether bytes of an unfinished message are held.
func (p *Parser) Pending() bool { return p.n > 0 || p.sysex }

// Reset drops running status, partial messages and the queue.
func (p *Parser) Reset() {
	clear(p.queue)
	*p = Parser{queue: p.queue[:0], sysbuf: p.sysbuf[:0]}
}
