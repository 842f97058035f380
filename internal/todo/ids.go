package todo

import (
	"sync"
	"time"
)

// IDSource issues local todo ids: the current time in milliseconds, bumped
// so that every id is strictly greater than the previous one.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource creates an id source on the wall clock.
func NewIDSource() *IDSource {
	return &IDSource{now: time.Now}
}

// Next returns an id greater than every id it returned before and greater
// than floor.
func (s *IDSource) Next(floor int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	id = max(id, s.last+1, floor+1)
	s.last = id
	return id
}
