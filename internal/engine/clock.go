package engine

import "sync/atomic"

// Clock is the logical clock that orders the delivery log and the audit
// trail. Every delivery and every edit takes the next seq, so seqs are unique
// across matches and never reused after a correction removes a ball.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Lanes for different matches call Next() concurrently.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start, typically the
// store's GetLastSeq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
