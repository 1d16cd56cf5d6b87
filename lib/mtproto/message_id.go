package mtproto

import (
	"sync"

	"github.com/go-i2p/go-obfs2/lib/util/time/monotonic"
)

// MessageIDGenerator hands out message ids taken from the clock in
// nanoseconds since the Unix epoch. Ids are never zero and strictly
// increasing: when the clock has not advanced since the previous id, the
// previous id plus one is returned. Safe for concurrent use.
type MessageIDGenerator struct {
	clock *monotonic.Clock

	mu   sync.Mutex
	last int64
}

// NewMessageIDGenerator reads time from clock, or from an unadjusted clock
// when clock is nil.
func NewMessageIDGenerator(clock *monotonic.Clock) *MessageIDGenerator {
	if clock == nil {
		clock = monotonic.NewClock()
	}
	return &MessageIDGenerator{clock: clock}
}

// Next returns a message id greater than every id returned before.
func (g *MessageIDGenerator) Next() int64 {
	now := g.clock.Now().UnixNano()
	g.mu.Lock()
	defer g.mu.Unlock()
	if now <= g.last {
		now = g.last + 1
	}
	if now == 0 {
		now = 1
	}
	g.last = now
	return now
}
