package cache

import (
	"context"
	"sync"
	"time"
)

// Config holds the cache settings.
type Config struct {
	// DefaultTTL is applied to entries stored with Set.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept. Zero disables
	// the background sweeper; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
	// MaxItems bounds the cache size. When full, Set evicts the entry closest
	// to expiry. Zero means unbounded.
	MaxItems int
	// OnEviction, if set, is called for every evicted or expired entry.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory TTL cache for read-mostly store objects.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config

	done chan struct{}
	once sync.Once
}

// New creates a new cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	c := &Cache{
		items:  make(map[string]item),
		config: config,
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		if _, exists := c.items[key]; !exists {
			c.evictSoonestLocked()
		}
	}
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.Delete(context.Background(), key)
		return nil, false
	}
	return it.value, true
}

// Delete removes a key from the cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	c.mu.Unlock()

	if ok && c.config.OnEviction != nil {
		c.config.OnEviction(key, it.value)
	}
}

// Clear removes all keys from the cache.
func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

// evictSoonestLocked drops the entry closest to expiry. Caller holds the lock.
func (c *Cache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for key, it := range c.items {
		if victim == "" || it.expiresAt.Before(soonest) {
			victim = key
			soonest = it.expiresAt
		}
	}
	if victim != "" {
		it := c.items[victim]
		delete(c.items, victim)
		if c.config.OnEviction != nil {
			c.config.OnEviction(victim, it.value)
		}
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	var evicted []struct {
		key   string
		value any
	}

	c.mu.Lock()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
			if c.config.OnEviction != nil {
				evicted = append(evicted, struct {
					key   string
					value any
				}{key, it.value})
			}
		}
	}
	c.mu.Unlock()

	for _, e := range evicted {
		c.config.OnEviction(e.key, e.value)
	}
}
