// Package memory is an in-process store used by tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

// Store keeps a working copy of the collection that Persist promotes to the
// committed copy.
type Store struct {
	mu        sync.RWMutex
	committed map[uuid.UUID]story.Story
	working   map[uuid.UUID]story.Story
	dirty     bool
	closed    bool
}

var _ store.Store = (*Store)(nil)

// New returns a store seeded with already committed records.
func New(records ...story.Story) *Store {
	s := &Store{
		committed: make(map[uuid.UUID]story.Story, len(records)),
		working:   make(map[uuid.UUID]story.Story, len(records)),
	}
	for _, r := range records {
		s.committed[r.ID] = r
		s.working[r.ID] = r
	}
	return s
}

func (s *Store) ListAll(ctx context.Context) ([]story.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	return sorted(s.working), nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (story.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return story.Story{}, store.ErrClosed
	}
	r, ok := s.working[id]
	if !ok {
		return story.Story{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return r, nil
}

func (s *Store) Put(ctx context.Context, r story.Story) error {
	return s.mutate(func() error {
		s.working[r.ID] = r
		return nil
	})
}

func (s *Store) MarkDiscarded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(id, func(r *story.Story) {
		stamp := at.UTC()
		r.DiscardedAt = &stamp
		r.Touch(stamp)
	})
}

func (s *Store) Restore(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(id, func(r *story.Story) {
		r.DiscardedAt = nil
		r.Touch(at)
	})
}

func (s *Store) HardDelete(ctx context.Context, id uuid.UUID) error {
	return s.mutate(func() error {
		if _, ok := s.working[id]; !ok {
			return fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		delete(s.working, id)
		return nil
	})
}

func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.committed = clone(s.working)
	s.dirty = false
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Committed returns the durable view of the collection, newest first.
func (s *Store) Committed() []story.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.committed)
}

// Dirty reports whether there are staged changes not yet persisted.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Store) update(id uuid.UUID, fn func(*story.Story)) error {
	return s.mutate(func() error {
		r, ok := s.working[id]
		if !ok {
			return fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		fn(&r)
		s.working[id] = r
		return nil
	})
}

func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	if err := fn(); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func sorted(m map[uuid.UUID]story.Story) []story.Story {
	out := make([]story.Story, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	store.SortNewestFirst(out)
	return out
}

func clone(m map[uuid.UUID]story.Story) map[uuid.UUID]story.Story {
	out := make(map[uuid.UUID]story.Story, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
