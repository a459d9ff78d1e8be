// Package clock supplies the current time to the order engine so that expiry
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the default clock. It reports UTC wall time.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// FakeClock is a manually driven clock, safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock frozen at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the frozen time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
