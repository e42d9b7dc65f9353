// Package sched implements a deterministic runloop for periodic,
// priority-ordered tasks. Due tasks are dispatched highest priority first
// with per-task execution statistics and deadline-overrun detection; the
// loop sleeps adaptively until the next due instant and terminates when
// the process-wide shutdown flag is raised.
//
// Two execution modes share the same selection and accounting: in-line
// dispatch on the loop goroutine, and threaded dispatch where each due
// task of a tick runs on a transient worker and the dispatcher joins all
// workers before sleeping.
package sched

import (
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rezajatnika/rjos-go/internal/clock"
	"github.com/rezajatnika/rjos-go/internal/constants"
	"github.com/rezajatnika/rjos-go/internal/interfaces"
)

var (
	// ErrZeroCapacity is returned by New for a non-positive task table
	// capacity.
	ErrZeroCapacity = errors.New("sched: task capacity must be positive")

	// ErrNilCallback is returned by AddTask for a nil callback.
	ErrNilCallback = errors.New("sched: nil task callback")

	// ErrZeroInterval is returned by AddTask for a zero interval.
	ErrZeroInterval = errors.New("sched: task interval must be positive")

	// ErrEmptyName is returned by AddTask for an empty task name.
	ErrEmptyName = errors.New("sched: empty task name")

	// ErrTableFull is returned by AddTask when the table is at capacity.
	ErrTableFull = errors.New("sched: task table full")

	// ErrRunning is returned for operations that are invalid while the
	// dispatch loop holds control.
	ErrRunning = errors.New("sched: scheduler is running")

	// ErrClosed is returned when the scheduler has been closed.
	ErrClosed = errors.New("sched: scheduler closed")
)

// noTaskDue marks an idle tick with nothing pending.
const noTaskDue = math.MaxUint32

// Config carries scheduler construction parameters.
type Config struct {
	// MaxTasks is the fixed task table capacity. Required.
	MaxTasks int

	// Threaded selects per-tick worker dispatch instead of in-line
	// dispatch.
	Threaded bool

	// SleepCapMS bounds the inter-tick sleep. 0 selects the default.
	SleepCapMS uint32

	// Logger receives overrun reports. May be nil.
	Logger interfaces.Logger

	// Observer receives per-dispatch statistics. May be nil.
	Observer interfaces.Observer
}

// Scheduler owns a fixed-capacity table of periodic tasks and the
// dispatch loop that runs them.
type Scheduler struct {
	mu       sync.Mutex
	tasks    []*Task
	maxTasks int
	closed   bool

	threaded   bool
	sleepCapMS uint32
	running    atomic.Bool
	logHook    LogHook
	logger     interfaces.Logger
	observer   interfaces.Observer

	// Injection points for deterministic tests.
	nowMS func() uint32
	sleep func(time.Duration)
}

// New allocates a scheduler with the given configuration.
func New(cfg Config) (*Scheduler, error) {
	if cfg.MaxTasks <= 0 {
		return nil, ErrZeroCapacity
	}
	capMS := cfg.SleepCapMS
	if capMS == 0 {
		capMS = constants.DefaultSleepCapMS
	}
	return &Scheduler{
		tasks:      make([]*Task, 0, cfg.MaxTasks),
		maxTasks:   cfg.MaxTasks,
		threaded:   cfg.Threaded,
		sleepCapMS: capMS,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		nowMS:      clock.Millis,
		sleep:      time.Sleep,
	}, nil
}

// AddTask appends a task to the table. The first invocation happens about
// intervalMS after registration. Valid only while the loop is not
// running.
func (s *Scheduler) AddTask(fn TaskFunc, data interface{}, intervalMS uint32, priority uint8, name string) error {
	if fn == nil {
		return ErrNilCallback
	}
	if intervalMS == 0 {
		return ErrZeroInterval
	}
	if name == "" {
		return ErrEmptyName
	}
	if s.running.Load() {
		return ErrRunning
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.tasks) >= s.maxTasks {
		return ErrTableFull
	}
	s.tasks = append(s.tasks, &Task{
		name:       name,
		fn:         fn,
		data:       data,
		intervalMS: intervalMS,
		priority:   priority,
		lastRunMS:  s.nowMS(),
	})
	return nil
}

// SetLogHook installs or clears the post-dispatch callback.
func (s *Scheduler) SetLogHook(hook LogHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logHook = hook
}

// Tasks returns the current table in dispatch order.
func (s *Scheduler) Tasks() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Start sorts the table by priority (stable, descending — priority
// relationships are then immutable until Start returns) and enters the
// dispatch loop. It returns once the shutdown flag is observed or Stop is
// called; an in-progress tick always completes first.
func (s *Scheduler) Start() {
	s.running.Store(true)
	defer s.running.Store(false)

	s.mu.Lock()
	sort.SliceStable(s.tasks, func(i, j int) bool {
		return s.tasks[i].priority > s.tasks[j].priority
	})
	s.mu.Unlock()

	for !ShouldExit() && s.running.Load() {
		if s.threaded {
			s.tickThreaded()
		} else {
			s.tick()
		}
	}
}

// Stop asks the dispatch loop to return after the current tick. Advisory:
// the shutdown flag terminates the loop the same way.
func (s *Scheduler) Stop() {
	s.running.Store(false)
}

// Close releases the task table. Must not be called while Start is
// active.
func (s *Scheduler) Close() error {
	if s.running.Load() {
		return ErrRunning
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.closed = true
	return nil
}

// tick runs one in-line dispatch iteration: sample the clock once, run
// every due task in table order, then sleep until the nearest deadline.
func (s *Scheduler) tick() {
	now := s.nowMS()
	nextDue := uint32(noTaskDue)
	due := 0

	for i, task := range s.tasks {
		elapsed := now - task.lastRunMS
		if elapsed >= task.intervalMS {
			due++
			s.dispatch(i, task, now)
		} else if diff := task.intervalMS - elapsed; diff < nextDue {
			nextDue = diff
		}
	}

	if s.observer != nil {
		s.observer.ObserveTick(due)
	}
	s.idle(nextDue)
}

// dispatch invokes one due task and updates its accounting. last_run is
// set to the tick's sample, not the post-callback time, so jitter does
// not accumulate and missed intervals never burst.
func (s *Scheduler) dispatch(index int, task *Task, now uint32) {
	task.deadlineMS = task.lastRunMS + task.intervalMS

	start := s.nowMS()
	task.fn(task.data)
	end := s.nowMS()
	duration := end - start

	task.lastRunMS = now
	task.runCount++
	task.totalDurationMS += duration
	if duration > task.maxDurationMS {
		task.maxDurationMS = duration
	}

	overrun := end > task.deadlineMS
	if overrun {
		task.overrunCount++
		if s.logger != nil {
			s.logger.Printf("task %s exceeded deadline by %dms", task.name, end-task.deadlineMS)
		}
	}

	if s.observer != nil {
		s.observer.ObserveDispatch(task.name, duration, overrun)
	}
	if s.logHook != nil {
		s.logHook(index, task.data)
	}
}

// tickThreaded runs one dispatch iteration with a transient worker per
// due task. Workers of the same tick overlap; the dispatcher joins them
// all before sleeping, so two invocations of the same task never overlap.
func (s *Scheduler) tickThreaded() {
	now := s.nowMS()
	nextDue := uint32(noTaskDue)
	due := 0

	var wg sync.WaitGroup
	for i, task := range s.tasks {
		s.mu.Lock()
		elapsed := now - task.lastRunMS
		s.mu.Unlock()

		if elapsed >= task.intervalMS {
			due++
			wg.Add(1)
			go func(index int, t *Task) {
				defer wg.Done()
				s.dispatchWorker(index, t, now)
			}(i, task)
		} else if diff := task.intervalMS - elapsed; diff < nextDue {
			nextDue = diff
		}
	}
	wg.Wait()

	if s.observer != nil {
		s.observer.ObserveTick(due)
	}
	s.idle(nextDue)
}

// dispatchWorker is the threaded-mode dispatch body. The scheduler mutex
// guards every read and write of task state; the callback itself runs
// outside the mutex so due tasks of one tick can overlap.
func (s *Scheduler) dispatchWorker(index int, task *Task, now uint32) {
	s.mu.Lock()
	task.deadlineMS = task.lastRunMS + task.intervalMS
	fn, data := task.fn, task.data
	s.mu.Unlock()

	start := s.nowMS()
	fn(data)
	end := s.nowMS()
	duration := end - start

	s.mu.Lock()
	defer s.mu.Unlock()
	task.lastRunMS = now
	task.runCount++
	task.totalDurationMS += duration
	if duration > task.maxDurationMS {
		task.maxDurationMS = duration
	}

	overrun := end > task.deadlineMS
	if overrun {
		task.overrunCount++
		if s.logger != nil {
			s.logger.Printf("task %s exceeded deadline by %dms", task.name, end-task.deadlineMS)
		}
	}

	if s.observer != nil {
		s.observer.ObserveDispatch(task.name, duration, overrun)
	}
	if s.logHook != nil {
		s.logHook(index, task.data)
	}
}

// idle sleeps until the nearest next-due instant, capped so the loop
// re-checks the shutdown flag promptly, with a 1 ms floor when no task is
// pending.
func (s *Scheduler) idle(nextDue uint32) {
	sleepMS := uint32(constants.MinSleepMS)
	if nextDue != noTaskDue {
		sleepMS = nextDue
		if sleepMS > s.sleepCapMS {
			sleepMS = s.sleepCapMS
		}
	}
	s.sleep(time.Duration(sleepMS) * time.Millisecond)
}
