package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// MemoryStore is a concurrency-safe in-memory implementation of airquality.Store.
// Readings are kept sorted by timestamp ascending.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []airquality.Reading
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends a reading, keeping timestamp order. Readings with equal
// timestamps keep their insertion order.
func (s *MemoryStore) Insert(_ context.Context, r airquality.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.readings), func(i int) bool {
		return s.readings[i].Timestamp.After(r.Timestamp)
	})
	s.readings = append(s.readings, airquality.Reading{})
	copy(s.readings[i+1:], s.readings[i:])
	s.readings[i] = r
	return nil
}

// Latest returns the most recent reading.
func (s *MemoryStore) Latest(_ context.Context) (airquality.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return airquality.Reading{}, airquality.ErrNoData
	}
	return s.readings[len(s.readings)-1], nil
}

// Since returns all readings at or after from, oldest first, capped at limit.
func (s *MemoryStore) Since(_ context.Context, from time.Time, limit int) ([]airquality.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.readings), func(i int) bool {
		return !s.readings[i].Timestamp.Before(from)
	})

	matched := s.readings[i:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]airquality.Reading, len(matched))
	copy(result, matched)
	return result, nil
}

// Count returns the number of stored readings.
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.readings)), nil
}
