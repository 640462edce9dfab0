package player

import (
	"sort"
	"sync"
	"time"
)

// MockClock is a manually driven Clock for deterministic playback tests.
// Advance moves time forward and runs every due callback in deadline order,
// including callbacks scheduled by earlier callbacks within the same window,
// so a whole reveal/dwell/commit chain can be stepped through synchronously.
type MockClock struct {
	mutex  sync.Mutex
	now    time.Time
	timers []*mockTimer
	seq    int
}

// NewMockClock starts at a fixed, arbitrary instant.
func NewMockClock() *MockClock {
	return &MockClock{
		now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (c *MockClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *MockClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if d < 0 {
		d = 0
	}
	t := &mockTimer{
		clock:    c,
		deadline: c.now.Add(d),
		fn:       fn,
		seq:      c.seq,
	}
	c.seq++
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock by d, firing due timers as it goes. The clock
// reads as each timer's deadline while its callback runs.
func (c *MockClock) Advance(d time.Duration) {
	c.mutex.Lock()
	target := c.now.Add(d)

	for {
		t := c.popDue(target)
		if t == nil {
			break
		}
		if t.deadline.After(c.now) {
			c.now = t.deadline
		}
		c.mutex.Unlock()
		t.fn()
		c.mutex.Lock()
	}

	c.now = target
	c.mutex.Unlock()
}

// popDue removes and returns the earliest pending timer with a deadline at
// or before target, or nil.
func (c *MockClock) popDue(target time.Time) *mockTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline.Equal(c.timers[j].deadline) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})
	t := c.timers[0]
	if t.deadline.After(target) {
		return nil
	}
	c.timers = c.timers[1:]
	return t
}

// Pending returns the number of scheduled, unfired timers.
func (c *MockClock) Pending() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.timers)
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	fn       func()
	seq      int
}

func (t *mockTimer) Stop() bool {
	t.clock.mutex.Lock()
	defer t.clock.mutex.Unlock()
	for i, pending := range t.clock.timers {
		if pending == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	return false
}

var _ Clock = (*MockClock)(nil)
