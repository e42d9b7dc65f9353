// Package udp provides a minimal UDP sender/receiver adapter for
// publishing telemetry and feeding test harnesses.
package udp

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrClosed is returned for operations on a closed connection.
var ErrClosed = errors.New("udp: connection closed")

// Conn wraps a UDP socket bound to one peer (sender) or one local
// address (receiver).
type Conn struct {
	conn *net.UDPConn
	host string
	port uint16
}

// Dial creates a sending socket whose datagrams go to host:port.
func Dial(host string, port uint16) (*Conn, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s:%d: %w", host, port, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %s:%d: %w", host, port, err)
	}
	return &Conn{conn: conn, host: host, port: port}, nil
}

// Listen creates a receiving socket bound to host:port. Port 0 selects an
// ephemeral port; see LocalPort.
func Listen(host string, port uint16) (*Conn, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s:%d: %w", host, port, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: listen %s:%d: %w", host, port, err)
	}
	return &Conn{conn: conn, host: host, port: port}, nil
}

// Send transmits one datagram.
func (c *Conn) Send(data []byte) (int, error) {
	if c.conn == nil {
		return 0, ErrClosed
	}
	return c.conn.Write(data)
}

// Write is an alias for Send satisfying the Transport interface.
func (c *Conn) Write(data []byte) (int, error) {
	return c.Send(data)
}

// Read receives one datagram into buf.
func (c *Conn) Read(buf []byte) (int, error) {
	if c.conn == nil {
		return 0, ErrClosed
	}
	n, _, err := c.conn.ReadFromUDP(buf)
	return n, err
}

// SetRecvTimeout bounds how long Read blocks. Zero clears the deadline.
func (c *Conn) SetRecvTimeout(d time.Duration) error {
	if c.conn == nil {
		return ErrClosed
	}
	if d == 0 {
		return c.conn.SetReadDeadline(time.Time{})
	}
	return c.conn.SetReadDeadline(time.Now().Add(d))
}

// LocalPort returns the bound local port.
func (c *Conn) LocalPort() uint16 {
	if c.conn == nil {
		return 0
	}
	return uint16(c.conn.LocalAddr().(*net.UDPAddr).Port)
}

// Close releases the socket.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
