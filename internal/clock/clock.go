// Package clock provides the process-wide monotonic time source.
//
// All counters are rebased so the first read returns 0 (or near 0).
// Concurrent first reads may observe bases a few microseconds apart; this
// is acceptable because all downstream arithmetic uses differences.
package clock

import (
	"sync"
	"time"
)

var (
	baseOnce sync.Once
	base     time.Time
)

func elapsed() time.Duration {
	baseOnce.Do(func() {
		base = time.Now()
	})
	return time.Since(base)
}

// Millis returns milliseconds since the first read, modulo 2^32.
func Millis() uint32 {
	return uint32(elapsed() / time.Millisecond)
}

// Micros returns microseconds since the first read, modulo 2^32.
// Wraps after roughly 71 minutes; use Micros64 for long-lived spans.
func Micros() uint32 {
	return uint32(elapsed() / time.Microsecond)
}

// Millis64 returns milliseconds since the first read without wrapping.
func Millis64() int64 {
	return int64(elapsed() / time.Millisecond)
}

// Micros64 returns microseconds since the first read without wrapping.
func Micros64() int64 {
	return int64(elapsed() / time.Microsecond)
}
