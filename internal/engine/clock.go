package engine

import "sync/atomic"

// Clock hands out the seq stamped on every memoized analysis and run row.
// Store listings order by seq, so a later write always sorts after an
// earlier one regardless of wall-clock skew between processes.
//
// Batch workers share one Clock; every method is atomic.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first stamp is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first stamp is last+1.
func NewClockAt(last int64) *Clock {
	c := &Clock{}
	c.AdvanceTo(last)
	return c
}

// Next stamps one write.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current is the last stamp handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// AdvanceTo moves the clock forward so the next stamp exceeds last.
// It never moves the clock back, so stamps already issued stay unique
// when another process has written fewer rows.
func (c *Clock) AdvanceTo(last int64) {
	for {
		cur := c.seq.Load()
		if last <= cur || c.seq.CompareAndSwap(cur, last) {
			return
		}
	}
}
