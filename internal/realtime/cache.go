package realtime

import (
	"sync"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Cache is a concurrency-safe single-slot holder for the realtime snapshot.
// Every Set replaces the whole snapshot; the last write wins.
type Cache struct {
	mu   sync.RWMutex
	snap airquality.Snapshot
}

// New returns a Cache holding the initial all-null snapshot.
func New() *Cache {
	return &Cache{}
}

// Set overwrites the snapshot.
func (c *Cache) Set(s airquality.Snapshot) {
	s = s.Clone()

	c.mu.Lock()
	c.snap = s
	c.mu.Unlock()
}

// Get returns a copy of the current snapshot.
func (c *Cache) Get() airquality.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}
