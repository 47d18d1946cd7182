package cache

import (
	"context"
	"sync"
	"time"

	"btc-basis/internal/basis"
)

type entry struct {
	Result    *basis.Result
	ExpiresAt time.Time
}

// Memory is an in-process TTL cache. Expired entries are swept every
// sweepInterval until Close is called.
type Memory struct {
	mu    sync.RWMutex
	store map[string]*entry
	ttl   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

const sweepInterval = 5 * time.Minute

// NewMemory creates a cache and starts its cleanup goroutine.
func NewMemory(ttl time.Duration) *Memory {
	c := &Memory{
		store: make(map[string]*entry),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup(sweepInterval)
	return c
}

// Get retrieves a cached result if available and not expired.
func (c *Memory) Get(_ context.Context, key string) (*basis.Result, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.store[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(e.ExpiresAt) {
		return nil, false
	}
	return e.Result, true
}

// Set stores a result in the cache.
func (c *Memory) Set(_ context.Context, key string, res *basis.Result) {
	if c == nil || res == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &entry{
		Result:    res,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Memory) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries from the cache.
func (c *Memory) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*entry)
}

// Close stops the cleanup goroutine.
func (c *Memory) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Memory) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *Memory) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.store {
		if now.After(e.ExpiresAt) {
			delete(c.store, key)
		}
	}
}
