package browse

import (
	"sort"
	"sync"
	"time"
)

// DefaultDebounce is the search input coalescing window.
const DefaultDebounce = 100 * time.Millisecond

// Timer is a pending call created by a [Clock].
type Timer interface {
	Stop() bool
}

// Clock creates timers. [RealClock] uses the runtime timer; [FakeClock] is advanced by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is backed by [time.AfterFunc].
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Handle identifies a scheduled call.
type Handle uint64

// Scheduler runs functions after a delay and can cancel them before they run.
type Scheduler interface {
	Schedule(fn func(), delay time.Duration) Handle
	Cancel(h Handle)
}

// ClockScheduler implements [Scheduler] over a [Clock].
//
// A cancelled call never runs, even if its timer already expired and is waiting for the lock.
type ClockScheduler struct {
	clock  Clock
	mu     sync.Mutex
	next   Handle
	timers map[Handle]Timer
}

func NewClockScheduler(clock Clock) *ClockScheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &ClockScheduler{clock: clock, timers: make(map[Handle]Timer)}
}

func (s *ClockScheduler) Schedule(fn func(), delay time.Duration) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	h := s.next
	s.timers[h] = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()

		if live {
			fn()
		}
	})
	return h
}

func (s *ClockScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending returns the number of scheduled calls that have neither run nor been cancelled.
func (s *ClockScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Debouncer coalesces triggers into one call per quiet window, carrying the latest value.
type Debouncer[T any] struct {
	scheduler Scheduler
	delay     time.Duration
	fn        func(T)

	mu      sync.Mutex
	pending Handle
	armed   bool
	gen     uint64 // counts triggers; a callback disarms only if none came after it
}

// NewDebouncer calls fn with the last triggered value once delay passes without a new trigger.
func NewDebouncer[T any](scheduler Scheduler, delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{scheduler: scheduler, delay: delay, fn: fn}
}

// Trigger cancels any pending call and schedules a new one with value.
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.armed {
		d.scheduler.Cancel(d.pending)
	}

	d.gen++
	gen := d.gen
	d.pending = d.scheduler.Schedule(func() {
		d.mu.Lock()
		if d.armed && d.gen == gen {
			d.armed = false
		}
		d.mu.Unlock()
		d.fn(value)
	}, d.delay)
	d.armed = true
}

// Stop cancels the pending call, if any.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.armed {
		d.scheduler.Cancel(d.pending)
		d.armed = false
	}
}

// FakeClock is a manually advanced [Clock] for tests.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Time
	seq     int
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &fakeTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs, in deadline order, every timer that expires.
// Timer functions run on the calling goroutine.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now

	var due, rest []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.at.After(now):
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})

	for _, t := range due {
		c.mu.Lock()
		stopped := t.stopped
		t.stopped = true
		c.mu.Unlock()
		if !stopped {
			t.fn()
		}
	}
}
