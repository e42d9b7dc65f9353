package sched

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// shutdownRequested is the process-wide shutdown flag. It transitions
// 0 -> 1 once per process run; the dispatch loop observes it between
// ticks.
var shutdownRequested atomic.Bool

var signalOnce sync.Once

// SetupSignalHandlers installs a handler for the standard interrupt and
// terminate signals that raises the shutdown flag. Idempotent. The
// handler goroutine does nothing beyond the atomic store.
func SetupSignalHandlers() {
	signalOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		go func() {
			for range ch {
				shutdownRequested.Store(true)
			}
		}()
	})
}

// ShouldExit reports whether a shutdown has been requested.
func ShouldExit() bool {
	return shutdownRequested.Load()
}

// RequestShutdown raises the shutdown flag directly, equivalent to
// receiving a termination signal.
func RequestShutdown() {
	shutdownRequested.Store(true)
}
