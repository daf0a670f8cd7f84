package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	windowStart time.Time
	count       int64
	expiresAt   time.Time
}

// MemoryCounter keeps window counts in process memory. Expired entries are
// swept at most once per sweep interval.
type MemoryCounter struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastSweep time.Time
	sweepEach time.Duration
}

// Ensure MemoryCounter implements Counter interface
var _ Counter = (*MemoryCounter)(nil)

// NewMemoryCounter creates an empty in-process counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		entries:   make(map[string]*memoryEntry),
		sweepEach: time.Minute,
	}
}

// Incr implements Counter.
func (c *MemoryCounter) Incr(_ context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep(now)

	windowStart := now.Truncate(window)
	entry, ok := c.entries[key]
	if !ok || !entry.windowStart.Equal(windowStart) {
		entry = &memoryEntry{
			windowStart: windowStart,
			expiresAt:   windowStart.Add(window),
		}
		c.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

// Len returns the number of tracked keys.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweep must be called with c.mu held.
func (c *MemoryCounter) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.sweepEach {
		return
	}
	c.lastSweep = now
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
