package storetest

import (
	"sync"
	"time"
)

// Epoch is the first instant handed out by a Clock.
var Epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Clock is a deterministic time source that advances by a fixed step on every read, so that records created one
// after the other never share a timestamp.
type Clock struct {
	lock sync.Mutex
	now  time.Time
	step time.Duration
}

func NewClock() *Clock {
	return &Clock{now: Epoch, step: time.Second}
}

func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Advance jumps the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}
