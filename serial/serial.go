// Package serial provides a thin POSIX serial-port adapter used as an
// opaque byte sink/source by the controller tasks.
package serial

import "errors"

// Parity selects the parity mode for the line.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// FlowControl selects the flow-control mechanism.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowRTSCTS
	FlowXONXOFF
)

var (
	// ErrUnsupportedBaud is returned for baud rates with no matching
	// line speed.
	ErrUnsupportedBaud = errors.New("serial: unsupported baud rate")

	// ErrUnsupported is returned on platforms without termios support.
	ErrUnsupported = errors.New("serial: not supported on this platform")

	// ErrClosed is returned for operations on a closed port.
	ErrClosed = errors.New("serial: port closed")
)

// Options carries line settings beyond device and baud rate.
//
// Blocking behavior follows the classic VMIN/VTIME tuning:
//   - Blocking with TimeoutMS <= 0: reads block until at least one byte
//     arrives (VMIN=1, VTIME=0).
//   - Blocking with TimeoutMS > 0: reads return when any data arrives or
//     after the timeout (VMIN=0, VTIME=TimeoutMS/100 clamped to 1..255).
//   - Non-blocking: the descriptor is put in O_NONBLOCK and TimeoutMS is
//     ignored.
type Options struct {
	DataBits  int
	StopBits  int
	Parity    Parity
	Flow      FlowControl
	Blocking  bool
	TimeoutMS int
}

// DefaultOptions returns the common 8N1 blocking configuration.
func DefaultOptions() *Options {
	return &Options{
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
		Flow:     FlowNone,
		Blocking: true,
	}
}
