package node

import "sync/atomic"

// Counter is the outbound button press counter.
//
// It is eight bits wide and wraps from 255 to 0. The consumer is its only
// writer; the atomic lets Stats read it from other goroutines.
type Counter struct {
	v atomic.Uint32
}

// Increment adds one and returns the new wrapped value.
func (c *Counter) Increment() uint8 {
	// 2^32 is a multiple of 2^8, so truncating the running total wraps correctly.
	return uint8(c.v.Add(1))
}

// Value returns the current wrapped value.
func (c *Counter) Value() uint8 {
	return uint8(c.v.Load())
}
