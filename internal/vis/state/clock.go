package state

import "time"

const (
	minInterval = 50 * time.Millisecond
	maxInterval = 5 * time.Second
)

// TickClock decides when the next simulation tick is due.
type TickClock struct {
	Interval time.Duration // Time between ticks
	Running  bool          // Whether ticks are being issued
	last     time.Time
}

// NewTickClock creates a stopped clock.
func NewTickClock(interval time.Duration) *TickClock {
	c := &TickClock{}
	c.SetInterval(interval)
	return c
}

// Start starts the clock. The first tick is due one interval after now.
func (c *TickClock) Start(now time.Time) {
	c.Running = true
	c.last = now
}

// Stop stops the clock.
func (c *TickClock) Stop() {
	c.Running = false
}

// Toggle starts a stopped clock or stops a running one.
func (c *TickClock) Toggle(now time.Time) {
	if c.Running {
		c.Stop()
		return
	}
	c.Start(now)
}

// Due reports whether a tick should be issued at now, and if so consumes
// it. Missed intervals are not replayed.
func (c *TickClock) Due(now time.Time) bool {
	if !c.Running || now.Sub(c.last) < c.Interval {
		return false
	}
	c.last = now
	return true
}

// Until returns the time left before the next tick is due.
func (c *TickClock) Until(now time.Time) time.Duration {
	d := c.Interval - now.Sub(c.last)
	if d < 0 {
		return 0
	}
	return d
}

// SetInterval sets the tick interval, clamped to [50ms, 5s].
func (c *TickClock) SetInterval(d time.Duration) {
	if d < minInterval {
		d = minInterval
	}
	if d > maxInterval {
		d = maxInterval
	}
	c.Interval = d
}

// Faster shortens the interval by a third.
func (c *TickClock) Faster() {
	c.SetInterval(c.Interval * 2 / 3)
}

// Slower lengthens the interval by half.
func (c *TickClock) Slower() {
	c.SetInterval(c.Interval * 3 / 2)
}
