package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// CacheMetrics tracks cache performance
type CacheMetrics struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// UnifiedCache is a TTL cache for API reads that every visitor may share.
// Only successful loads are stored. A zero TTL disables it.
type UnifiedCache[T any] struct {
	items  *gocache.Cache
	ttl    time.Duration
	name   string
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	logger *zap.Logger
}

// NewUnifiedCache creates a new generic cache with specified TTL and name
func NewUnifiedCache[T any](ttl time.Duration, name string, logger *zap.Logger) *UnifiedCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &UnifiedCache[T]{ttl: ttl, name: name, logger: logger}
	if ttl > 0 {
		c.items = gocache.New(ttl, 2*ttl)
	}
	return c
}

func (c *UnifiedCache[T]) Enabled() bool {
	return c != nil && c.items != nil
}

func (c *UnifiedCache[T]) Set(key string, value T) {
	if !c.Enabled() {
		return
	}
	c.items.SetDefault(key, value)
	c.sets.Add(1)
}

func (c *UnifiedCache[T]) Get(key string) (T, bool) {
	var zero T
	if !c.Enabled() {
		return zero, false
	}
	v, ok := c.items.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	value, ok := v.(T)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return value, true
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result when it succeeds.
func (c *UnifiedCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	c.logger.Debug("Cache filled", zap.String("cache", c.name), zap.String("key", key))
	return v, nil
}

func (c *UnifiedCache[T]) Clear() {
	if c.Enabled() {
		c.items.Flush()
	}
}

func (c *UnifiedCache[T]) GetMetrics() CacheMetrics {
	return CacheMetrics{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}
