package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock is a Lamport clock owned by one site (one running canvas).
type Clock struct {
	site    string
	lamport atomic.Uint64
}

// NewClock returns a clock with a fresh random site ID.
func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

// Tick advances the clock and returns the new time.
func (c *Clock) Tick() uint64 {
	return c.lamport.Add(1)
}

// Observe moves the clock past a remote timestamp.
func (c *Clock) Observe(t uint64) {
	for {
		cur := c.lamport.Load()
		if t <= cur || c.lamport.CompareAndSwap(cur, t) {
			return
		}
	}
}

// Now returns the current time without advancing it.
func (c *Clock) Now() uint64 { return c.lamport.Load() }

// Stamp assigns op the next local time and this site's ID.
func (c *Clock) Stamp(op Op) Op {
	op.Lamport = c.Tick()
	op.Site = c.site
	return op
}
