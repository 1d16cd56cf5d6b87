package monotonic

import (
	"sync"
	"testing"
	"time"
)

func TestNewClock(t *testing.T) {
	c := NewClock()
	if c.Offset() != 0 {
		t.Errorf("expected zero offset, got %s", c.Offset())
	}
}

func TestClock_Now_WithoutOffset(t *testing.T) {
	c := NewClock()
	before := time.Now()
	now := c.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Clock.Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestClock_Now_WithOffset(t *testing.T) {
	c := NewClock()
	c.SetOffset(5 * time.Second)

	before := time.Now().Add(5 * time.Second)
	now := c.Now()
	after := time.Now().Add(5 * time.Second)

	if now.Before(before) || now.After(after) {
		t.Errorf("Clock.Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestClock_ConcurrentAccess(t *testing.T) {
	c := NewClock()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(d time.Duration) {
			defer wg.Done()
			c.SetOffset(d)
		}(time.Duration(i) * time.Millisecond)
		go func() {
			defer wg.Done()
			_ = c.Now()
		}()
	}
	wg.Wait()
}
