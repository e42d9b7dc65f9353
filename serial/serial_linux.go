//go:build linux

package serial

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Port is an open serial device.
type Port struct {
	fd     int
	device string
	baud   uint32
	opts   Options
	closed bool
}

// baudFlag maps a numeric baud rate to the termios speed constant.
func baudFlag(baud uint32) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	default:
		return 0, ErrUnsupportedBaud
	}
}

// Open opens device at the given baud rate and applies the line options.
// A nil opts selects DefaultOptions.
func Open(device string, baud uint32, opts *Options) (*Port, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	speed, err := baudFlag(baud)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}

	p := &Port{fd: fd, device: device, baud: baud, opts: *opts}
	if err := p.configure(speed); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return p, nil
}

// configure programs the termios settings for a raw 8-bit-clean line.
func (p *Port) configure(speed uint32) error {
	tio, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("serial: tcgetattr %s: %w", p.device, err)
	}

	// Raw mode: no canonical input, echo, signals or output processing.
	tio.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	tio.Oflag &^= unix.OPOST
	tio.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHONL | unix.ISIG
	tio.Cflag |= unix.CLOCAL | unix.CREAD

	tio.Cflag &^= unix.CSIZE
	switch p.opts.DataBits {
	case 7:
		tio.Cflag |= unix.CS7
	default:
		tio.Cflag |= unix.CS8
	}

	if p.opts.StopBits == 2 {
		tio.Cflag |= unix.CSTOPB
	} else {
		tio.Cflag &^= unix.CSTOPB
	}

	switch p.opts.Parity {
	case ParityEven:
		tio.Cflag |= unix.PARENB
		tio.Cflag &^= unix.PARODD
	case ParityOdd:
		tio.Cflag |= unix.PARENB | unix.PARODD
	default:
		tio.Cflag &^= unix.PARENB
	}

	switch p.opts.Flow {
	case FlowRTSCTS:
		tio.Cflag |= unix.CRTSCTS
	case FlowXONXOFF:
		tio.Iflag |= unix.IXON | unix.IXOFF
	}

	tio.Cflag &^= unix.CBAUD
	tio.Cflag |= speed
	tio.Ispeed = speed
	tio.Ospeed = speed

	applyReadTimeout(tio, p.opts.Blocking, p.opts.TimeoutMS)

	if err := unix.IoctlSetTermios(p.fd, unix.TCSETS, tio); err != nil {
		return fmt.Errorf("serial: tcsetattr %s: %w", p.device, err)
	}

	if !p.opts.Blocking {
		if err := unix.SetNonblock(p.fd, true); err != nil {
			return fmt.Errorf("serial: set nonblock %s: %w", p.device, err)
		}
	}
	return nil
}

// applyReadTimeout tunes VMIN/VTIME for the configured blocking mode.
func applyReadTimeout(tio *unix.Termios, blocking bool, timeoutMS int) {
	if !blocking {
		tio.Cc[unix.VMIN] = 0
		tio.Cc[unix.VTIME] = 0
		return
	}
	if timeoutMS <= 0 {
		tio.Cc[unix.VMIN] = 1
		tio.Cc[unix.VTIME] = 0
		return
	}
	deci := timeoutMS / 100
	if deci < 1 {
		deci = 1
	}
	if deci > 255 {
		deci = 255
	}
	tio.Cc[unix.VMIN] = 0
	tio.Cc[unix.VTIME] = uint8(deci)
}

// SetTimeout retunes the read timeout on an open port.
func (p *Port) SetTimeout(timeoutMS int) error {
	if p.closed {
		return ErrClosed
	}
	tio, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("serial: tcgetattr %s: %w", p.device, err)
	}
	p.opts.TimeoutMS = timeoutMS
	applyReadTimeout(tio, p.opts.Blocking, timeoutMS)
	if err := unix.IoctlSetTermios(p.fd, unix.TCSETS, tio); err != nil {
		return fmt.Errorf("serial: tcsetattr %s: %w", p.device, err)
	}
	return nil
}

// Read reads up to len(buf) bytes from the line.
func (p *Port) Read(buf []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	return unix.Read(p.fd, buf)
}

// Write writes buf to the line.
func (p *Port) Write(buf []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	return unix.Write(p.fd, buf)
}

// BytesAvailable reports how many input bytes are buffered.
func (p *Port) BytesAvailable() (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	return unix.IoctlGetInt(p.fd, unix.TIOCINQ)
}

// Flush discards unread input and unsent output.
func (p *Port) Flush() error {
	if p.closed {
		return ErrClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIOFLUSH)
}

// Close closes the device.
func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}

// Device returns the device path the port was opened with.
func (p *Port) Device() string { return p.device }

// Baud returns the configured baud rate.
func (p *Port) Baud() uint32 { return p.baud }
