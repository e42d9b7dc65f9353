package pelco

import "errors"

// State identifies which frame byte the parser expects next.
type State int

const (
	StateSync State = iota
	StateAddress
	StateCommand1
	StateCommand2
	StateData1
	StateData2
	StateChecksum
)

// ErrNeedMore is returned by Parse when the chunk ends before a complete
// frame has been assembled. Feed the next chunk to continue.
var ErrNeedMore = errors.New("pelco: need more bytes")

// MessageType classifies a decoded frame.
type MessageType int

const (
	// TypeUnknown covers any valid frame that is not a position response.
	TypeUnknown MessageType = iota

	// TypeResponsePan is a pan position response (command2 0x59).
	TypeResponsePan

	// TypeResponseTilt is a tilt position response (command2 0x5B).
	TypeResponseTilt
)

// ParsedMessage carries a classified frame and, for position responses,
// the decoded angle in whole degrees.
type ParsedMessage struct {
	Type         MessageType
	Address      uint8
	AngleDegrees int32
	AngleValid   bool
	Raw          Message
}

// Parser assembles frames from a possibly-fragmented byte stream. It owns
// only primitive state and never retains caller buffers; feed remaining
// bytes across calls. One goroutine per parser.
type Parser struct {
	state          State
	msg            Message
	messagesParsed uint32
	parserErrors   uint32
}

// NewParser returns a parser in the sync-hunting state.
func NewParser() *Parser {
	return &Parser{}
}

// Reset returns the parser to the sync-hunting state, preserving the
// counters.
func (p *Parser) Reset() {
	p.state = StateSync
	p.msg = Message{}
}

// MessagesParsed returns how many valid frames have been decoded.
func (p *Parser) MessagesParsed() uint32 {
	return p.messagesParsed
}

// Errors returns how many assembled frames failed validation.
func (p *Parser) Errors() uint32 {
	return p.parserErrors
}

// Parse consumes bytes from data until one complete valid frame has been
// decoded into out, returning the number of bytes consumed. When data is
// exhausted first it returns (len(data), ErrNeedMore); multiple frames in
// one chunk are surfaced one per call by re-feeding data[n:].
//
// Bytes before a sync byte are discarded. A frame that fails validation
// bumps the error counter and the parser resynchronizes on the next sync
// byte.
func (p *Parser) Parse(data []byte, out *ParsedMessage) (int, error) {
	if out == nil {
		return 0, ErrNilMessage
	}

	for i, b := range data {
		switch p.state {
		case StateSync:
			if b == SyncByte {
				p.msg = Message{Sync: b}
				p.state = StateAddress
			}

		case StateAddress:
			p.msg.Address = b
			p.state = StateCommand1

		case StateCommand1:
			p.msg.Command1 = b
			p.state = StateCommand2

		case StateCommand2:
			p.msg.Command2 = b
			p.state = StateData1

		case StateData1:
			p.msg.Data1 = b
			p.state = StateData2

		case StateData2:
			p.msg.Data2 = b
			p.state = StateChecksum

		case StateChecksum:
			p.msg.Checksum = b
			p.state = StateSync
			if p.msg.Validate() == nil {
				p.classify(out)
				p.messagesParsed++
				return i + 1, nil
			}
			p.parserErrors++
		}
	}
	return len(data), ErrNeedMore
}

// classify fills out from the assembled frame.
func (p *Parser) classify(out *ParsedMessage) {
	*out = ParsedMessage{
		Type:    TypeUnknown,
		Address: p.msg.Address,
		Raw:     p.msg,
	}

	switch p.msg.Command2 {
	case Cmd2RespPanPos:
		out.Type = TypeResponsePan
		if angle, err := p.msg.PanAngle(); err == nil {
			out.AngleDegrees = angle
			out.AngleValid = true
		}
	case Cmd2RespTiltPos:
		out.Type = TypeResponseTilt
		if angle, err := p.msg.TiltAngle(); err == nil {
			out.AngleDegrees = angle
			out.AngleValid = true
		}
	}
}
