package timer

import (
	"sort"
	"sync"
	"time"
)

// Clock schedules deferred work. Production code uses the wall clock; tests
// drive a ManualClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Stopper cancels a scheduled function. Stop reports whether the call
// prevented the function from running.
type Stopper interface {
	Stop() bool
}

// RealClock is the wall clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// AfterFunc runs f in its own goroutine after d.
func (RealClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock whose time only moves when Advance is called.
// Scheduled functions run synchronously inside Advance, in deadline order.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	at    time.Time
	seq   int
	fn    func()
	done  bool
}

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.pending = append(c.pending, t)
	return t
}

// Stop cancels the timer.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves the clock forward by d, running every function that comes
// due, including ones scheduled by functions run during this call.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.done = true
		c.now = next.at
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of scheduled functions that have not run or
// been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.pending {
		if !t.done {
			n++
		}
	}
	return n
}

// nextDue drops finished timers and returns the earliest one due by target.
func (c *ManualClock) nextDue(target time.Time) *manualTimer {
	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.done {
			live = append(live, t)
		}
	}
	c.pending = live

	sort.Slice(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].seq < live[j].seq
		}
		return live[i].at.Before(live[j].at)
	})
	if len(live) == 0 || live[0].at.After(target) {
		return nil
	}
	return live[0]
}
