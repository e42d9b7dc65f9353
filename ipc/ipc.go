// Package ipc provides a named-pipe (FIFO) adapter for one-way
// communication between local processes.
package ipc

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rezajatnika/rjos-go/internal/constants"
)

// MaxMessageSize bounds a single Send.
const MaxMessageSize = constants.MaxPipeMessageSize

// Mode selects which end of the pipe to open.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

var (
	// ErrTooLarge is returned when a message exceeds MaxMessageSize.
	ErrTooLarge = errors.New("ipc: message too large")

	// ErrClosed is returned for operations on a closed pipe.
	ErrClosed = errors.New("ipc: pipe closed")

	// ErrWrongMode is returned when sending on a read pipe or receiving
	// on a write pipe.
	ErrWrongMode = errors.New("ipc: operation not valid for pipe mode")
)

// Pipe is one end of a named pipe.
type Pipe struct {
	path string
	file *os.File
	mode Mode
}

// Open creates the FIFO at path if needed and opens the requested end.
// Opening blocks until the peer end is opened, per FIFO semantics.
func Open(path string, mode Mode) (*Pipe, error) {
	if err := unix.Mkfifo(path, 0o666); err != nil && !errors.Is(err, unix.EEXIST) {
		return nil, fmt.Errorf("ipc: mkfifo %s: %w", path, err)
	}

	flag := os.O_RDONLY
	if mode == ModeWrite {
		flag = os.O_WRONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("ipc: open %s: %w", path, err)
	}
	return &Pipe{path: path, file: f, mode: mode}, nil
}

// Send writes one message to a write-mode pipe.
func (p *Pipe) Send(msg []byte) error {
	if p.file == nil {
		return ErrClosed
	}
	if p.mode != ModeWrite {
		return ErrWrongMode
	}
	if len(msg) > MaxMessageSize {
		return ErrTooLarge
	}
	if _, err := p.file.Write(msg); err != nil {
		return fmt.Errorf("ipc: write %s: %w", p.path, err)
	}
	return nil
}

// Recv reads up to len(buf) bytes from a read-mode pipe.
func (p *Pipe) Recv(buf []byte) (int, error) {
	if p.file == nil {
		return 0, ErrClosed
	}
	if p.mode != ModeRead {
		return 0, ErrWrongMode
	}
	return p.file.Read(buf)
}

// Read satisfies the Transport interface on a read-mode pipe.
func (p *Pipe) Read(buf []byte) (int, error) {
	return p.Recv(buf)
}

// Write satisfies the Transport interface on a write-mode pipe.
func (p *Pipe) Write(buf []byte) (int, error) {
	if err := p.Send(buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Path returns the FIFO path.
func (p *Pipe) Path() string { return p.path }

// Close closes this end of the pipe. The FIFO node stays on disk.
func (p *Pipe) Close() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}
