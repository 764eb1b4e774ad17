package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	coord     Coordinate
	expiresAt time.Time
}

// MemoryCache is an expiring in-process location cache, used by tests and
// as a fallback when no Redis address is configured. Expired entries are
// dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uint]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[uint]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) SetLocation(_ context.Context, playerID uint, coord Coordinate, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[playerID] = memoryEntry{
		coord:     coord,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) GetLocation(_ context.Context, playerID uint) (Coordinate, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[playerID]
	c.mu.RUnlock()
	if !ok {
		return Coordinate{}, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, playerID)
		c.mu.Unlock()
		return Coordinate{}, false, nil
	}
	return entry.coord, true, nil
}
