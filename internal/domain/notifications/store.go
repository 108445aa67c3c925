package notifications

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the newest notices in process memory, dropping the
// oldest once capacity is reached.
type MemoryStore struct {
	mu       sync.Mutex
	items    []Notice
	capacity int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) CreateNotification(_ context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
	if over := len(s.items) - s.capacity; over > 0 {
		s.items = append([]Notice(nil), s.items[over:]...)
	}
	return nil
}

// ListNotifications returns notices newest first.
func (s *MemoryStore) ListNotifications(_ context.Context, limit, offset int) ([]Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notice, 0, limit)
	for i := len(s.items) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

func (s *MemoryStore) CountNotifications(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func (s *MemoryStore) MarkRead(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].ReadAt == nil {
			s.items[i].ReadAt = &at
		}
		return nil
	}
	return ErrNotFound
}
