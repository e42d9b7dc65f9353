package rjos

import (
	"sync/atomic"
	"time"

	"github.com/rezajatnika/rjos-go/internal/interfaces"
)

// DurationBucketsMS defines the dispatch-duration histogram buckets in
// milliseconds.
var DurationBucketsMS = []uint32{1, 5, 10, 25, 50, 100, 250, 500}

const numDurationBuckets = 8

// Metrics tracks scheduler dispatch statistics. It implements the
// observer hook the scheduler calls after every dispatch and tick; all
// counters are atomic so threaded dispatch can feed it directly.
type Metrics struct {
	// Dispatch counters
	Dispatches    atomic.Uint64 // Completed callback invocations
	OverrunsTotal atomic.Uint64 // Invocations that finished past deadline
	BusyMSTotal   atomic.Uint64 // Cumulative callback execution time

	// Tick counters
	Ticks     atomic.Uint64 // Dispatch loop iterations observed
	IdleTicks atomic.Uint64 // Iterations with no task due

	// Peaks
	MaxDurationMS atomic.Uint32 // Longest single dispatch
	MaxDuePerTick atomic.Uint32 // Most tasks due in one tick

	// Duration histogram (cumulative counts).
	// durationBuckets[i] counts dispatches with duration <= DurationBucketsMS[i].
	durationBuckets [numDurationBuckets]atomic.Uint64

	// StartTime is the metrics creation timestamp (UnixNano).
	StartTime atomic.Int64
}

var _ interfaces.Observer = (*Metrics)(nil)

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// ObserveDispatch records one completed task invocation.
func (m *Metrics) ObserveDispatch(name string, durationMS uint32, overrun bool) {
	m.Dispatches.Add(1)
	m.BusyMSTotal.Add(uint64(durationMS))
	if overrun {
		m.OverrunsTotal.Add(1)
	}

	for {
		current := m.MaxDurationMS.Load()
		if durationMS <= current {
			break
		}
		if m.MaxDurationMS.CompareAndSwap(current, durationMS) {
			break
		}
	}

	for i, bound := range DurationBucketsMS {
		if durationMS <= bound {
			m.durationBuckets[i].Add(1)
		}
	}
}

// ObserveTick records one dispatch loop iteration with the number of due
// tasks it ran.
func (m *Metrics) ObserveTick(due int) {
	m.Ticks.Add(1)
	if due == 0 {
		m.IdleTicks.Add(1)
		return
	}
	for {
		current := m.MaxDuePerTick.Load()
		if uint32(due) <= current {
			break
		}
		if m.MaxDuePerTick.CompareAndSwap(current, uint32(due)) {
			break
		}
	}
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Dispatches    uint64
	Overruns      uint64
	BusyMS        uint64
	Ticks         uint64
	IdleTicks     uint64
	MaxDurationMS uint32
	MaxDuePerTick uint32
	AvgDurationMS uint64
	Histogram     [numDurationBuckets]uint64
	Uptime        time.Duration
}

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Dispatches:    m.Dispatches.Load(),
		Overruns:      m.OverrunsTotal.Load(),
		BusyMS:        m.BusyMSTotal.Load(),
		Ticks:         m.Ticks.Load(),
		IdleTicks:     m.IdleTicks.Load(),
		MaxDurationMS: m.MaxDurationMS.Load(),
		MaxDuePerTick: m.MaxDuePerTick.Load(),
		Uptime:        time.Since(time.Unix(0, m.StartTime.Load())),
	}
	if snap.Dispatches > 0 {
		snap.AvgDurationMS = snap.BusyMS / snap.Dispatches
	}
	for i := range snap.Histogram {
		snap.Histogram[i] = m.durationBuckets[i].Load()
	}
	return snap
}
