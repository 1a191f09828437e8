package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/ikkim/toolchest-backend/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Backend stores opaque values with a TTL.
// Delete removes every key containing pattern; an empty pattern removes everything.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, pattern string) (int, error)
	Sweep(ctx context.Context) (int, error)
	Len(ctx context.Context) (int, error)
}

type Stats struct {
	Backend string  `json:"backend"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Entries int     `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is the read-through memoization layer shared by the services
type Cache struct {
	backend    Backend
	defaultTTL time.Duration
	group      singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
}

func New(backend Backend, defaultTTL time.Duration) *Cache {
	return &Cache{backend: backend, defaultTTL: defaultTTL}
}

func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// GetCached returns the value under key while it is younger than ttl, otherwise runs producer
// and stores its result. Concurrent misses on one key share a single producer call.
// Backend failures are logged and never fail the call; producer errors are returned and not cached.
func GetCached[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return producer(ctx)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if value, ok := lookup[T](ctx, c, key); ok {
		c.hits.Add(1)
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another caller may have filled the key while we waited
		if value, ok := lookup[T](ctx, c, key); ok {
			c.hits.Add(1)
			return value, nil
		}
		c.misses.Add(1)

		value, err := producer(ctx)
		if err != nil {
			return value, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			logger.Warn("Cache value not serializable, skipping store", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			return value, nil
		}
		if err := c.backend.Set(ctx, key, data, ttl); err != nil {
			logger.Warn("Cache write failed", map[string]interface{}{
				"key":     key,
				"backend": c.backend.Name(),
				"error":   err.Error(),
			})
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}

func lookup[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var value T
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed", map[string]interface{}{
			"key":     key,
			"backend": c.backend.Name(),
			"error":   err.Error(),
		})
		return value, false
	}
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		logger.Warn("Cache entry corrupt, ignoring", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return value, false
	}
	return value, true
}

// Invalidate drops every key containing pattern, or all keys for an empty pattern
func (c *Cache) Invalidate(ctx context.Context, pattern string) int {
	if c == nil {
		return 0
	}
	removed, err := c.backend.Delete(ctx, pattern)
	if err != nil {
		logger.Warn("Cache invalidation failed", map[string]interface{}{
			"pattern": pattern,
			"backend": c.backend.Name(),
			"error":   err.Error(),
		})
		return removed
	}

	logger.Debug("Cache invalidated", map[string]interface{}{
		"pattern": pattern,
		"removed": removed,
	})
	return removed
}

// Sweep physically removes expired entries
func (c *Cache) Sweep(ctx context.Context) int {
	if c == nil {
		return 0
	}
	removed, err := c.backend.Sweep(ctx)
	if err != nil {
		logger.Warn("Cache sweep failed", map[string]interface{}{
			"backend": c.backend.Name(),
			"error":   err.Error(),
		})
	}
	return removed
}

// HitRate reads only the in-process counters, so it never touches the backend
func (c *Cache) HitRate() float64 {
	if c == nil {
		return 0
	}
	return hitRate(c.hits.Load(), c.misses.Load())
}

// Stats also counts backend entries; on redis that scans the whole key prefix
func (c *Cache) Stats(ctx context.Context) Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Backend: c.backend.Name(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	if n, err := c.backend.Len(ctx); err == nil {
		s.Entries = n
	}
	s.HitRate = hitRate(s.Hits, s.Misses)
	return s
}

func hitRate(hits, misses int64) float64 {
	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}
