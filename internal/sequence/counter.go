// Package sequence provides the atomic identifier sources behind ledger
// numbering: an in-process counter, Redis INCR and a PostgreSQL row.
package sequence

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned after a sequencer has been shut down.
var ErrClosed = errors.New("sequence: closed")

// Counter is an in-process sequencer seeded with a high-water mark. The first
// value handed out is highWater+1.
type Counter struct {
	mu     sync.Mutex
	last   int64
	closed bool
}

// NewCounter returns a counter that continues after highWater.
func NewCounter(highWater int64) *Counter {
	return &Counter{last: highWater}
}

// Next increments and returns the counter.
func (c *Counter) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	c.last++
	return c.last, nil
}

// HighWater returns the last value handed out.
func (c *Counter) HighWater() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Close stops the counter from issuing further values.
func (c *Counter) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
