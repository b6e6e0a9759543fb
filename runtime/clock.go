package runtime

import (
	"sync"
	"time"
)

// Clock is the time source of the messaging core.
type Clock interface {
	Now() time.Time
}

// MonotonicClock never returns a value earlier than or equal to the previous
// one, even if the wall clock steps backwards between two calls.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

// NewMonotonicClockFrom is used by tests to drive the wall clock.
func NewMonotonicClockFrom(now func() time.Time) *MonotonicClock {
	return &MonotonicClock{now: now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Round(0)
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}
