// Package transport implements the beat-step clock that drives recall runs.
package transport

import "math"

// Counter converts engine ticks into beat steps. Delay is the number of
// ticks per step and may be fractional; a step is consumed on the tick
// where DelayCounter+1 reaches Delay.
type Counter struct {
	Delay        float64
	DelayCounter float64
	Offset       uint64

	Loop      bool
	LoopStart uint64
	LoopEnd   uint64
}

// New returns a counter advancing one step every delay ticks.
func New(delay float64) *Counter {
	return &Counter{Delay: delay}
}

// SetLoop enables looping over [start, end).
func (c *Counter) SetLoop(start, end uint64) {
	c.Loop = true
	c.LoopStart = start
	c.LoopEnd = end
}

// Tick advances the counter by one engine tick and reports whether a beat
// step was consumed.
func (c *Counter) Tick() bool {
	if c.DelayCounter+1 >= c.Delay {
		c.DelayCounter = 0
		if c.Loop && c.Offset+1 >= c.LoopEnd {
			c.Offset = c.LoopStart
		} else {
			c.Offset++
		}
		return true
	}
	c.DelayCounter++
	return false
}

// TicksPerStep returns the number of ticks between two consumed steps.
func (c *Counter) TicksPerStep() int {
	if c.Delay <= 1 {
		return 1
	}
	return int(math.Ceil(c.Delay))
}

// Reset rewinds to step 0.
func (c *Counter) Reset() {
	c.DelayCounter = 0
	c.Offset = 0
}
