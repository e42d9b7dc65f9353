// Package pelco implements the classic 7-byte Pelco-D pan/tilt/zoom
// control protocol: message builders, validation, byte serialization and
// an incremental stream parser with resynchronization.
package pelco

import "errors"

// Wire format constants
const (
	// SyncByte is the fixed leading byte of every frame
	SyncByte = 0xFF

	// MessageSize is the exact on-wire frame length in bytes
	MessageSize = 7

	// MaxAddress is the largest addressable device
	MaxAddress = 255

	// MaxSpeed is the largest pan/tilt speed value
	MaxSpeed = 0x3F

	// MaxPreset is the largest preset slot
	MaxPreset = 255
)

// Command1 bit assignments
const (
	Cmd1Sense       = 0x80
	Cmd1Reserved1   = 0x40
	Cmd1Reserved2   = 0x20
	Cmd1AutoScan    = 0x10
	Cmd1CameraOnOff = 0x08
	Cmd1IrisClose   = 0x04
	Cmd1IrisOpen    = 0x02
	Cmd1FocusNear   = 0x01
)

// Command2 bit assignments and opcodes
const (
	Cmd2ClearPreset = 0x05
	Cmd2CallPreset  = 0x07
	Cmd2SetAux      = 0x09
	Cmd2ClearAux    = 0x0B
	Cmd2Dummy       = 0x0D
	Cmd2FocusFar    = 0x80
	Cmd2ZoomWide    = 0x40
	Cmd2ZoomTele    = 0x20
	Cmd2TiltDown    = 0x10
	Cmd2TiltUp      = 0x08
	Cmd2PanLeft     = 0x04
	Cmd2PanRight    = 0x02
	Cmd2Reserved    = 0x01

	Cmd2QueryPanPos  = 0x51
	Cmd2QueryTiltPos = 0x53
	Cmd2SetPanPos    = 0x4B
	Cmd2SetTiltPos   = 0x4D
	Cmd2RespPanPos   = 0x59
	Cmd2RespTiltPos  = 0x5B
)

var (
	// ErrNilMessage is returned when a required message pointer is nil.
	ErrNilMessage = errors.New("pelco: nil message")

	// ErrInvalidAddress is returned for addresses outside 0..MaxAddress.
	ErrInvalidAddress = errors.New("pelco: address out of range")

	// ErrInvalidSpeed is returned for speeds above MaxSpeed.
	ErrInvalidSpeed = errors.New("pelco: speed out of range")

	// ErrChecksum is returned when a frame fails sync or checksum
	// validation.
	ErrChecksum = errors.New("pelco: bad sync or checksum")

	// ErrShortBuffer is returned when a buffer is smaller than
	// MessageSize.
	ErrShortBuffer = errors.New("pelco: buffer too small")

	// ErrInvalidAngle is returned when a position response carries a raw
	// angle outside the representable range.
	ErrInvalidAngle = errors.New("pelco: angle out of range")

	// ErrWrongResponse is returned when angle decoding is attempted on a
	// frame that is not the matching position response.
	ErrWrongResponse = errors.New("pelco: not a position response")
)

// PanDirection selects the pan motion for movement builders.
type PanDirection int

const (
	PanStop PanDirection = iota
	PanLeft
	PanRight
)

// TiltDirection selects the tilt motion for movement builders.
type TiltDirection int

const (
	TiltStop TiltDirection = iota
	TiltUp
	TiltDown
)

// ZoomDirection selects the zoom motion.
type ZoomDirection int

const (
	ZoomStop ZoomDirection = iota
	ZoomWide
	ZoomTele
)

// Axis selects which position a query or set command addresses.
type Axis int

const (
	Pan Axis = iota
	Tilt
)

// Message is one 7-byte Pelco-D frame.
type Message struct {
	Sync     uint8
	Address  uint8
	Command1 uint8
	Command2 uint8
	Data1    uint8
	Data2    uint8
	Checksum uint8
}

// ComputeChecksum returns the checksum over the payload bytes:
// (address + command1 + command2 + data1 + data2) mod 256.
func (m *Message) ComputeChecksum() uint8 {
	return uint8(uint32(m.Address) + uint32(m.Command1) + uint32(m.Command2) +
		uint32(m.Data1) + uint32(m.Data2))
}

// New builds a frame with the given fields, sync byte and checksum set.
func New(addr int, cmd1, cmd2, data1, data2 uint8) (Message, error) {
	if addr < 0 || addr > MaxAddress {
		return Message{}, ErrInvalidAddress
	}
	m := Message{
		Sync:     SyncByte,
		Address:  uint8(addr),
		Command1: cmd1,
		Command2: cmd2,
		Data1:    data1,
		Data2:    data2,
	}
	m.Checksum = m.ComputeChecksum()
	return m, nil
}

// Validate reports whether m is a well-formed frame: sync byte present and
// checksum matching the payload.
func (m *Message) Validate() error {
	if m == nil {
		return ErrNilMessage
	}
	if m.Sync != SyncByte {
		return ErrChecksum
	}
	if m.Checksum != m.ComputeChecksum() {
		return ErrChecksum
	}
	return nil
}

// MovePan builds a pan motion command. Speed applies in data2; PanStop
// produces an all-stop frame for the pan axis.
func MovePan(addr int, dir PanDirection, speed uint8) (Message, error) {
	if speed > MaxSpeed {
		return Message{}, ErrInvalidSpeed
	}
	var cmd2 uint8
	switch dir {
	case PanLeft:
		cmd2 |= Cmd2PanLeft
	case PanRight:
		cmd2 |= Cmd2PanRight
	}
	return New(addr, 0x00, cmd2, 0x00, speed)
}

// MoveTilt builds a tilt motion command. Speed applies in data2.
func MoveTilt(addr int, dir TiltDirection, speed uint8) (Message, error) {
	if speed > MaxSpeed {
		return Message{}, ErrInvalidSpeed
	}
	var cmd2 uint8
	switch dir {
	case TiltUp:
		cmd2 |= Cmd2TiltUp
	case TiltDown:
		cmd2 |= Cmd2TiltDown
	}
	return New(addr, 0x00, cmd2, 0x00, speed)
}

// PanTilt builds a combined pan+tilt motion command with independent
// speeds: pan speed in data1, tilt speed in data2.
func PanTilt(addr int, panDir PanDirection, panSpeed uint8, tiltDir TiltDirection, tiltSpeed uint8) (Message, error) {
	if panSpeed > MaxSpeed || tiltSpeed > MaxSpeed {
		return Message{}, ErrInvalidSpeed
	}
	var cmd2 uint8
	switch panDir {
	case PanLeft:
		cmd2 |= Cmd2PanLeft
	case PanRight:
		cmd2 |= Cmd2PanRight
	}
	switch tiltDir {
	case TiltUp:
		cmd2 |= Cmd2TiltUp
	case TiltDown:
		cmd2 |= Cmd2TiltDown
	}
	return New(addr, 0x00, cmd2, panSpeed, tiltSpeed)
}

// Zoom builds a zoom command.
func Zoom(addr int, dir ZoomDirection) (Message, error) {
	var cmd2 uint8
	switch dir {
	case ZoomWide:
		cmd2 |= Cmd2ZoomWide
	case ZoomTele:
		cmd2 |= Cmd2ZoomTele
	}
	return New(addr, 0x00, cmd2, 0x00, 0x00)
}

// QueryPosition builds a pan or tilt position query.
func QueryPosition(addr int, axis Axis) (Message, error) {
	var cmd2 uint8
	switch axis {
	case Pan:
		cmd2 = Cmd2QueryPanPos
	case Tilt:
		cmd2 = Cmd2QueryTiltPos
	}
	return New(addr, 0x00, cmd2, 0x00, 0x00)
}

// SetPanAngle builds a set-pan-position command. The raw angle is in
// hundredths of a degree (0..35999) and is split big-endian across
// data1:data2.
func SetPanAngle(addr int, angleRaw uint16) (Message, error) {
	return New(addr, 0x00, Cmd2SetPanPos, uint8(angleRaw>>8), uint8(angleRaw))
}

// SetTiltAngle builds a set-tilt-position command with the raw angle split
// big-endian across data1:data2.
func SetTiltAngle(addr int, angleRaw uint16) (Message, error) {
	return New(addr, 0x00, Cmd2SetTiltPos, uint8(angleRaw>>8), uint8(angleRaw))
}

// MarshalBytes serializes the frame into buf, which must hold at least
// MessageSize bytes.
func (m *Message) MarshalBytes(buf []byte) error {
	if m == nil {
		return ErrNilMessage
	}
	if len(buf) < MessageSize {
		return ErrShortBuffer
	}
	buf[0] = m.Sync
	buf[1] = m.Address
	buf[2] = m.Command1
	buf[3] = m.Command2
	buf[4] = m.Data1
	buf[5] = m.Data2
	buf[6] = m.Checksum
	return nil
}

// Encode returns the frame as a freshly allocated 7-byte slice.
func (m *Message) Encode() []byte {
	buf := make([]byte, MessageSize)
	m.MarshalBytes(buf)
	return buf
}

// UnmarshalBytes fills m from the first MessageSize bytes of data. The
// caller validates separately.
func UnmarshalBytes(data []byte, m *Message) error {
	if m == nil {
		return ErrNilMessage
	}
	if len(data) < MessageSize {
		return ErrShortBuffer
	}
	m.Sync = data[0]
	m.Address = data[1]
	m.Command1 = data[2]
	m.Command2 = data[3]
	m.Data1 = data[4]
	m.Data2 = data[5]
	m.Checksum = data[6]
	return nil
}

// PanAngle decodes a pan position response into whole degrees. The raw
// value data1*256+data2 counts hundredths of a degree from 0 to 35999.
func (m *Message) PanAngle() (int32, error) {
	if m == nil {
		return 0, ErrNilMessage
	}
	if m.Command2 != Cmd2RespPanPos {
		return 0, ErrWrongResponse
	}
	raw := int32(m.Data1)*256 + int32(m.Data2)
	if raw > 35999 {
		return 0, ErrInvalidAngle
	}
	return raw / 100, nil
}

// TiltAngle decodes a tilt position response into whole degrees. Raw
// values above 18000 count upward from horizontal (positive degrees),
// values below 18000 count downward (negative), and 18000 is level.
func (m *Message) TiltAngle() (int32, error) {
	if m == nil {
		return 0, ErrNilMessage
	}
	if m.Command2 != Cmd2RespTiltPos {
		return 0, ErrWrongResponse
	}
	raw := int32(m.Data1)*256 + int32(m.Data2)
	switch {
	case raw > 18000:
		return (36000 - raw) / 100, nil
	case raw < 18000:
		return -(raw / 100), nil
	default:
		return 0, nil
	}
}
