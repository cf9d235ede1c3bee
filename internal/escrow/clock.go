package escrow

import (
	"sync"
	"time"
)

// Clock supplies the logical timestamps stamped onto records. Values must
// be monotonically non-decreasing.
type Clock interface {
	Now() uint64
}

// SystemClock reports wall-clock unix seconds with a monotonic floor, so
// timestamps never step backwards across clock adjustments.
type SystemClock struct {
	mu   sync.Mutex
	last uint64
}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := uint64(time.Now().Unix())
	if now < c.last {
		now = c.last
	}
	c.last = now
	return now
}
