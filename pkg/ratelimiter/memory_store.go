package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window counters in process memory.
// Suitable for tests and single-instance development runs.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*memoryWindow)}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt, nil
}
