// Package memstore is an in-memory RecordStore used by tests and local
// development runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

type Store struct {
	mu    sync.RWMutex
	items map[string]*entity.WorkItem
	now   func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[string]*entity.WorkItem),
		now:   time.Now,
	}
}

// WithClock overrides the timestamp source. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Get(_ context.Context, id string) (*entity.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return item.Clone(), nil
}

func (s *Store) MergeSet(_ context.Context, id string, patch entity.WorkItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		item = &entity.WorkItem{ID: id, CreatedAt: s.now().UTC()}
		s.items[id] = item
	}
	item.Apply(patch)
	item.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) List(_ context.Context) ([]*entity.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.WorkItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
