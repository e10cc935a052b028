package store

import (
	"context"
	"sort"
	"sync"
)

type memoryKey struct {
	userID string
	period string
}

// MemoryStore is an in-memory Store for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[memoryKey]*Result
	periods map[memoryKey]Period
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[memoryKey]*Result),
		periods: make(map[memoryKey]Period),
	}
}

func (s *MemoryStore) SaveResult(_ context.Context, userID string, period Period, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey{userID: userID, period: period.Key()}
	cp := *result
	s.results[key] = &cp
	s.periods[key] = period
	return nil
}

func (s *MemoryStore) LoadResult(_ context.Context, userID string, period Period) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[memoryKey{userID: userID, period: period.Key()}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *MemoryStore) Exists(_ context.Context, userID string, period Period) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.results[memoryKey{userID: userID, period: period.Key()}]
	return ok, nil
}

func (s *MemoryStore) ListPeriods(_ context.Context, userID string) ([]Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var periods []Period
	for key, p := range s.periods {
		if key.userID == userID {
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Key() > periods[j].Key()
	})
	return periods, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
