package midi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Helpers ---

func feed(p *Parser, bs ...byte) {
	for _, b := range bs {
		p.Feed(b)
	}
}

func drain(p *Parser) []Message {
	var out []Message
	for m := range p.All() {
		out = append(out, m)
	}
	return out
}

func realTime(t *testing.T, op Opcode) Message {
	m, err := NewRealTime(op)
	require.NoError(t, err)
	return m
}

func sysEx(t *testing.T, data ...byte) Message {
	m, err := NewSysEx(data...)
	require.NoError(t, err)
	return m
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

// --- Parser Test Suite ---

type ParserTestSuite struct {
	suite.Suite
	p *Parser
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *ParserTestSuite) SetupTest() {
	s.p = NewParser()
}

func (s *ParserTestSuite) TestFixedSizeMessages() {
	tests := []struct {
		name  string
		input []byte
		want  Message
	}{
		{"NoteOff", []byte{0x82, 0x3C, 0x40}, NewNoteOff(2, 0x3C, 0x40)},
		{"NoteOn", []byte{0x9F, 0x40, 0x7F}, NewNoteOn(15, 0x40, 0x7F)},
		{"PolyAftertouch", []byte{0xA0, 0x40, 0x10}, NewPolyAftertouch(0, 0x40, 0x10)},
		{"ControlChange", []byte{0xB1, 0x07, 0x64}, NewControlChange(1, 0x07, 0x64)},
		{"ChannelMode", []byte{0xB1, 0x7B, 0x00}, NewControlChange(1, 0x7B, 0x00)},
		{"ProgramChange", []byte{0xC4, 0x05}, NewProgramChange(4, 0x05)},
		{"ChannelAftertouch", []byte{0xD9, 0x33}, NewChannelAftertouch(9, 0x33)},
		{"PitchBend", []byte{0xE0, 0x00, 0x40}, NewPitchBend(0, 0)},
		{"QuarterFrame", []byte{0xF1, 0x35}, NewQuarterFrame(3, 5)},
		{"SongPosition", []byte{0xF2, 0x10, 0x02}, NewSongPosition(0x110)},
		{"SongSelect", []byte{0xF3, 0x07}, NewSongSelect(7)},
		{"TuneRequest", []byte{0xF6}, NewTuneRequest()},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			p := NewParser()
			feed(p, tt.input[:len(tt.input)-1]...)
			s.Zero(p.Poll(), "message must not complete early")

			p.Feed(tt.input[len(tt.input)-1])
			s.Equal(1, p.Poll())

			m, ok := p.Next()
			s.Require().True(ok)
			s.Equal(tt.want, m)
		})
	}
}

func (s *ParserTestSuite) TestRunningStatus() {
	feed(s.p, 0x90, 0x40, 0x7F, 0x41, 0x00)

	s.Equal([]Message{
		NewNoteOn(0, 0x40, 0x7F),
		NewNoteOn(0, 0x41, 0x00),
	}, drain(s.p))

	status, ok := s.p.RunningStatus()
	s.True(ok)
	s.Equal(byte(0x90), status)
}

func (s *ParserTestSuite) TestRunningStatusSystemCommon() {
	feed(s.p, 0xF3, 0x01, 0x02)
	s.Equal([]Message{NewSongSelect(1), NewSongSelect(2)}, drain(s.p))

	// TuneRequest takes no data, so following data bytes are dropped.
	feed(s.p, 0xF6, 0x10, 0x11)
	s.Equal([]Message{NewTuneRequest()}, drain(s.p))
}

func (s *ParserTestSuite) TestRealTimeInterleaving() {
	feed(s.p, 0x90, 0x40, 0xF8, 0x7F)

	s.Equal([]Message{
		realTime(s.T(), Clock),
		NewNoteOn(0, 0x40, 0x7F),
	}, drain(s.p))
}

func (s *ParserTestSuite) TestRealTimeKeepsRunningStatus() {
	feed(s.p, 0xB0, 0x07, 0x10, 0xFE, 0x07, 0xFA, 0x20)

	s.Equal([]Message{
		NewControlChange(0, 0x07, 0x10),
		realTime(s.T(), ActiveSensing),
		realTime(s.T(), Start),
		NewControlChange(0, 0x07, 0x20),
	}, drain(s.p))
}

func (s *ParserTestSuite) TestSysExWithRealTime() {
	feed(s.p, 0xF0, 0x01, 0x02, 0xF8, 0x03, 0xF7)

	s.Equal([]Message{
		realTime(s.T(), Clock),
		sysEx(s.T(), 0x01, 0x02, 0x03),
	}, drain(s.p))
	s.False(s.p.InSysEx())
}

func (s *ParserTestSuite) TestEmptySysEx() {
	feed(s.p, 0xF0, 0xF7)
	msgs := drain(s.p)
	s.Require().Len(msgs, 1)
	s.Equal(SystemExclusive, msgs[0].Kind())
	s.Zero(msgs[0].Len())
}

func (s *ParserTestSuite) TestSysExKeepsRunningStatus() {
	feed(s.p, 0x91, 0x40, 0x7F, 0xF0, 0x7E, 0xF7, 0x41, 0x7F)

	s.Equal([]Message{
		NewNoteOn(1, 0x40, 0x7F),
		sysEx(s.T(), 0x7E),
		NewNoteOn(1, 0x41, 0x7F),
	}, drain(s.p))
}

func (s *ParserTestSuite) TestSysExBufferNotShared() {
	feed(s.p, 0xF0, 0x01, 0x02, 0xF7, 0xF0, 0x03, 0xF7)
	msgs := drain(s.p)
	s.Require().Len(msgs, 2)
	s.Equal([]byte{0x01, 0x02}, msgs[0].Data())
	s.Equal([]byte{0x03}, msgs[1].Data())
}

func (s *ParserTestSuite) TestSysExInterruptedByStatus() {
	// An unterminated SysEx is abandoned when a new status byte arrives.
	feed(s.p, 0xF0, 0x01, 0x02, 0x90, 0x40, 0x7F, 0xF7)

	s.Equal([]Message{NewNoteOn(0, 0x40, 0x7F)}, drain(s.p))
	s.False(s.p.InSysEx())
}

func (s *ParserTestSuite) TestResynchronization() {
	s.T().Run("LoneDataByte", func(t *testing.T) {
		p := NewParser()
		p.Feed(0x40)
		assert.Zero(t, p.Poll())
		_, ok := p.RunningStatus()
		assert.False(t, ok)
	})

	s.T().Run("StreamStartsMidMessage", func(t *testing.T) {
		p := NewParser()
		feed(p, 0x40, 0x7F, 0x80, 0x40, 0x00)
		assert.Equal(t, []Message{NewNoteOff(0, 0x40, 0x00)}, drain(p))
	})

	s.T().Run("IncompleteMessageDiscarded", func(t *testing.T) {
		p := NewParser()
		feed(p, 0x90, 0x40, 0xC3, 0x05)
		assert.Equal(t, []Message{NewProgramChange(3, 0x05)}, drain(p))
	})

	s.T().Run("SysExEndWithoutStart", func(t *testing.T) {
		p := NewParser()
		feed(p, 0xF7, 0x01, 0x02)
		assert.Zero(t, p.Poll())
	})
}

func (s *ParserTestSuite) TestUndefinedBytes() {
	feed(s.p, 0x90, 0x40, 0xF4, 0xF9, 0xF5, 0xFD, 0x7F)

	msgs := drain(s.p)
	s.Require().Len(msgs, 5)
	for i, op := range []Opcode{UndefinedF4, UndefinedF9, UndefinedF5, UndefinedFD} {
		s.Equal(Undefined, msgs[i].Kind())
		s.Equal(op, msgs[i].Opcode())
		s.Zero(msgs[i].Len())
	}
	s.Equal(NewNoteOn(0, 0x40, 0x7F), msgs[4])
}

func (s *ParserTestSuite) TestUndefinedInsideSysEx() {
	feed(s.p, 0xF0, 0x01, 0xF5, 0x02, 0xF7)

	msgs := drain(s.p)
	s.Require().Len(msgs, 2)
	s.Equal(UndefinedF5, msgs[0].Opcode())
	s.Equal(sysEx(s.T(), 0x01, 0x02), msgs[1])
}

func (s *ParserTestSuite) TestDraining() {
	feed(s.p, 0xF8, 0xF8, 0xF8)

	s.Equal(3, s.p.Poll())
	s.Equal(3, s.p.Poll(), "Poll must not consume")

	_, ok := s.p.Next()
	s.True(ok)
	s.Equal(2, s.p.Poll())

	s.p.Next()
	s.p.Next()
	_, ok = s.p.Next()
	s.False(ok)
	s.Zero(s.p.Poll())
}

func (s *ParserTestSuite) TestAllSnapshotsQueue() {
	feed(s.p, 0xF8, 0xFA)
	seq := s.p.All()

	// Messages completed after All was called belong to the next call.
	s.p.Feed(0xFC)

	var got []Opcode
	for m := range seq {
		got = append(got, m.Opcode())
	}
	s.Equal([]Opcode{Clock, Start}, got)

	for range seq {
		s.Fail("sequence must not replay")
	}
	s.Equal(1, s.p.Poll())
	s.Equal([]Message{realTime(s.T(), Stop)}, drain(s.p))
}

func (s *ParserTestSuite) TestAllEarlyBreak() {
	feed(s.p, 0xF8, 0xFA, 0xFC)
	seq := s.p.All()
	for range seq {
		break
	}
	s.Equal(2, s.p.Poll())

	var got []Opcode
	for m := range seq {
		got = append(got, m.Opcode())
	}
	s.Equal([]Opcode{Start, Stop}, got, "ranging again continues where it stopped")
}

func (s *ParserTestSuite) TestQueueCompaction() {
	for i := 0; i < 3*compactThreshold; i++ {
		s.p.Feed(0xF8)
		if i%2 == 1 {
			_, ok := s.p.Next()
			s.Require().True(ok)
		}
	}
	s.Equal(3*compactThreshold/2, s.p.Poll())
	s.Len(drain(s.p), 3*compactThreshold/2)
}

func (s *ParserTestSuite) TestWriteAndReadFrom() {
	n, err := s.p.Write([]byte{0x90, 0x40, 0x7F})
	s.Require().NoError(err)
	s.Equal(3, n)

	read, err := s.p.ReadFrom(bytes.NewBufferString("\x41\x00\xF8"))
	s.Require().NoError(err)
	s.EqualValues(3, read)

	s.Equal([]Message{
		NewNoteOn(0, 0x40, 0x7F),
		NewNoteOn(0, 0x41, 0x00),
		realTime(s.T(), Clock),
	}, drain(s.p))
}

func (s *ParserTestSuite) TestReadFromError() {
	boom := errors.New("device unplugged")
	_, err := s.p.ReadFrom(failingReader{boom})
	s.ErrorIs(err, boom)

	_, err = s.p.ReadFrom(nil)
	s.ErrorIs(err, ErrNilIO)
}

func (s *ParserTestSuite) TestPending() {
	s.False(s.p.Pending())
	feed(s.p, 0x90, 0x40)
	s.True(s.p.Pending())
	s.p.Feed(0x7F)
	s.False(s.p.Pending(), "running status alone is not a pending message")
	feed(s.p, 0xF0, 0x01)
	s.True(s.p.Pending())
	s.p.Feed(0xF7)
	s.False(s.p.Pending())
}

func (s *ParserTestSuite) TestReset() {
	feed(s.p, 0x90, 0x40, 0x7F, 0xF0, 0x01)
	s.p.Reset()

	s.Zero(s.p.Poll())
	s.False(s.p.InSysEx())
	_, ok := s.p.RunningStatus()
	s.False(ok)

	feed(s.p, 0x41, 0x7F)
	s.Zero(s.p.Poll(), "running status must be gone")
}

// TestParser runs the ParserTestSuite.
func TestParser(t *testing.T) {
	suite.Run(t, new(ParserTestSuite))
}

func TestParser_ZeroValue(t *testing.T) {
	var p Parser
	feed(&p, 0xC0, 0x01)
	m, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, NewProgramChange(0, 1), m)
}
