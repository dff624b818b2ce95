package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	cachedAt time.Time
}

// UserCache holds one value per user id until it is invalidated.
type UserCache[T any] struct {
	mu          sync.RWMutex
	entries     map[string]entry[T]
	generations map[string]uint64
	hits        uint64
	misses      uint64
}

func NewUserCache[T any]() *UserCache[T] {
	return &UserCache[T]{
		entries:     make(map[string]entry[T]),
		generations: make(map[string]uint64),
	}
}

// Get returns the cached value for userID, if any, and the generation to
// pass to SetAt when filling a miss.
func (c *UserCache[T]) Get(userID string) (T, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generations[userID]
	e, ok := c.entries[userID]
	if !ok {
		c.misses++
		var zero T
		return zero, gen, false
	}
	c.hits++
	return e.value, gen, true
}

// SetAt stores value only if userID was not invalidated since gen was read.
func (c *UserCache[T]) SetAt(userID string, gen uint64, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != gen {
		return false
	}
	c.entries[userID] = entry[T]{value: value, cachedAt: time.Now()}
	return true
}

// Set stores value for userID, replacing any previous one.
func (c *UserCache[T]) Set(userID string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry[T]{value: value, cachedAt: time.Now()}
}

// Invalidate drops the cached value for userID.
func (c *UserCache[T]) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.generations[userID]++
}

// Clear drops everything.
func (c *UserCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for userID := range c.entries {
		c.generations[userID]++
	}
	c.entries = make(map[string]entry[T])
}

// GetCacheStats returns statistics about the current cache
func (c *UserCache[T]) GetCacheStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var oldest time.Time
	for _, e := range c.entries {
		if oldest.IsZero() || e.cachedAt.Before(oldest) {
			oldest = e.cachedAt
		}
	}

	stats := map[string]interface{}{
		"total_users": len(c.entries),
		"hits":        c.hits,
		"misses":      c.misses,
	}
	if !oldest.IsZero() {
		stats["oldest_entry"] = oldest.UTC().Format(time.RFC3339)
	}
	return stats
}
