// Package ids hands out message ids for sent and received messages.
package ids

import (
	"math/rand/v2"
	"sync/atomic"
)

// Seed ranges. Send ids start below receiveBase and receive ids start at or
// above it, so the two sequences do not meet in practice.
const (
	sendSeedMax  = 100_000_000
	receiveBase  = 100_000_000
	receiveRange = 100_000_000
)

// Counter is a monotonically increasing id sequence.
type Counter struct {
	n atomic.Int64
}

// Next advances the counter by one and returns the new value.
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// Current returns the last value handed out (or the seed).
func (c *Counter) Current() int64 {
	return c.n.Load()
}

// Sequences holds the two independent id counters of a process.
type Sequences struct {
	Send    *Counter
	Receive *Counter
}

// New seeds both counters from disjoint random ranges.
func New() *Sequences {
	return NewSeeded(rand.Int64N(sendSeedMax), receiveBase+rand.Int64N(receiveRange))
}

// NewSeeded creates sequences starting after the given seeds.
func NewSeeded(send, receive int64) *Sequences {
	s := &Sequences{Send: &Counter{}, Receive: &Counter{}}
	s.Send.n.Store(send)
	s.Receive.n.Store(receive)
	return s
}
