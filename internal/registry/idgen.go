package registry

import (
	"sync"
	"time"
)

// IDGenerator issues record ids that read as creation-time wall-clock
// milliseconds, which keeps them compatible with ids already stored in
// existing data files. Ids are strictly increasing: a call in the same
// millisecond as the previous one, or one whose clock is behind an id
// already in the collection, gets the next integer instead.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator returns a generator reading the system clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns an id greater than both every id it issued before and
// floor, the largest id currently stored.
func (g *IDGenerator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	g.last = id
	return id
}
