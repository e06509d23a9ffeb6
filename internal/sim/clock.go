package sim

import (
	"math"
	"time"
)

// Clock turns wall time into simulation steps. A step never exceeds
// 1/minFPS seconds, so a stalled process does not hand the physics one
// enormous step that tunnels through thin geometry.
type Clock struct {
	now     func() time.Time
	maxStep float64
	last    time.Time
	started bool
}

func NewClock(minFPS float64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	maxStep := math.Inf(1)
	if minFPS > 0 {
		maxStep = 1 / minFPS
	}
	return &Clock{now: now, maxStep: maxStep}
}

// Tick returns the seconds since the previous Tick. The first call, a
// clock that did not advance and a clock that went backwards all yield 0.
func (c *Clock) Tick() float64 {
	t := c.now()
	if !c.started {
		c.started = true
		c.last = t
		return 0
	}

	dt := t.Sub(c.last).Seconds()
	c.last = t
	if !(dt > 0) {
		return 0
	}
	return math.Min(dt, c.maxStep)
}

// Reset forgets the previous tick, e.g. after the simulation was paused.
func (c *Clock) Reset() {
	c.started = false
}
