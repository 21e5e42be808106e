package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// MemoryStore is the in-memory Store. Every call takes the store-wide lock,
// so callers may use it from the poller and the stream concurrently.
// Entries are never evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[int64]*domain.TrackedItem
	nowFunc func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = f
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		items:   make(map[int64]*domain.TrackedItem),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Has reports whether id has been tracked.
func (s *MemoryStore) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

// Get returns a copy of the tracked entry for id.
func (s *MemoryStore) Get(id int64) (domain.TrackedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok {
		return domain.TrackedItem{}, false
	}
	return *t, true
}

// RecordNew creates the entry for a first sighting.
func (s *MemoryStore) RecordNew(id int64, state domain.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; ok {
		return fmt.Errorf("recording item %d: %w", id, ErrAlreadyTracked)
	}

	now := s.nowFunc()
	s.items[id] = &domain.TrackedItem{
		State:       state,
		FirstSeenAt: now,
		UpdatedAt:   now,
	}
	return nil
}

// RecordUpdate replaces the last known state, keeping the handle.
func (s *MemoryStore) RecordUpdate(id int64, state domain.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[id]
	if !ok {
		return fmt.Errorf("updating item %d: %w", id, ErrNotTracked)
	}

	t.State = state
	t.UpdatedAt = s.nowFunc()
	return nil
}

// SetHandle attaches handle to id unless one is already present.
func (s *MemoryStore) SetHandle(id int64, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[id]
	if !ok {
		return fmt.Errorf("setting handle for item %d: %w", id, ErrNotTracked)
	}

	if t.Handle == "" {
		t.Handle = handle
	}
	return nil
}

// List returns copies of all tracked entries ordered by item id.
func (s *MemoryStore) List() []domain.TrackedItem {
	s.mu.RLock()
	out := make([]domain.TrackedItem, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, *t)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.TrackedItem) int {
		switch {
		case a.State.ID < b.State.ID:
			return -1
		case a.State.ID > b.State.ID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Len returns the number of tracked items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ Store = (*MemoryStore)(nil)
