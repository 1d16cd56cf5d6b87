package monotonic

import (
	"sync"
	"time"
)

// Clock returns time.Now() shifted by an offset learned from an external
// time source. It is safe for concurrent use.
type Clock struct {
	mu     sync.RWMutex
	offset time.Duration
}

// NewClock creates a Clock with zero offset.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current time adjusted by the offset. The monotonic reading
// is preserved, so time.Since(c.Now()) stays monotonic.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	offset := c.offset
	c.mu.RUnlock()
	return time.Now().Add(offset)
}

// SetOffset replaces the offset applied by Now.
func (c *Clock) SetOffset(offset time.Duration) {
	c.mu.Lock()
	c.offset = offset
	c.mu.Unlock()
}

// Offset returns the offset currently applied.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}
