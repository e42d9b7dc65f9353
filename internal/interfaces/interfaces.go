// Package interfaces provides internal interface definitions for rjos-go.
// These are separate from the public packages to avoid circular imports
// between the root package and the scheduler/transport packages.
package interfaces

// Logger is the optional logging surface the scheduler uses for overrun
// reports.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer receives per-dispatch statistics from the scheduler.
// Implementations must be thread-safe as methods are called from the
// dispatch loop and, in threaded mode, from worker goroutines.
type Observer interface {
	ObserveDispatch(name string, durationMS uint32, overrun bool)
	ObserveTick(due int)
}

// Transport is an opaque byte sink/source the controller tasks talk
// through. Serial ports, UDP sockets and named pipes all satisfy it.
type Transport interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
}

// AvailableTransport is an optional interface for transports that can
// report how many bytes are ready without blocking.
type AvailableTransport interface {
	Transport
	BytesAvailable() (int, error)
}
