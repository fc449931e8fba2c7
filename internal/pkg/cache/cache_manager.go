package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/models"
)

// CacheManager holds the public content lists shown to anonymous visitors.
type CacheManager struct {
	Services *UnifiedCache[[]models.Service]
	Blogs    *UnifiedCache[[]models.Blog]
	Guides   *UnifiedCache[[]models.Guide]
	Events   *UnifiedCache[[]models.Event]
	Members  *UnifiedCache[[]models.User]
}

// NewCacheManager creates the caches with one TTL; zero disables them all.
func NewCacheManager(ttl time.Duration, logger *zap.Logger) *CacheManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheManager{
		Services: NewUnifiedCache[[]models.Service](ttl, "services", logger),
		Blogs:    NewUnifiedCache[[]models.Blog](ttl, "blogs", logger),
		Guides:   NewUnifiedCache[[]models.Guide](ttl, "guides", logger),
		Events:   NewUnifiedCache[[]models.Event](ttl, "events", logger),
		Members:  NewUnifiedCache[[]models.User](ttl, "members", logger),
	}
}

// GetAllMetrics returns metrics for all caches
func (cm *CacheManager) GetAllMetrics() map[string]CacheMetrics {
	return map[string]CacheMetrics{
		"services": cm.Services.GetMetrics(),
		"blogs":    cm.Blogs.GetMetrics(),
		"guides":   cm.Guides.GetMetrics(),
		"events":   cm.Events.GetMetrics(),
		"members":  cm.Members.GetMetrics(),
	}
}

// RegisterMetrics reports every cache's hits, misses and fills on meter
// as content_cache_operations_total{cache,result}.
func (cm *CacheManager) RegisterMetrics(meter metric.Meter) (metric.Registration, error) {
	ops, err := meter.Int64ObservableCounter(
		"content_cache_operations_total",
		metric.WithDescription("Public content cache lookups and fills"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for name, m := range cm.GetAllMetrics() {
			cache := attribute.String("cache", name)
			o.ObserveInt64(ops, m.Hits, metric.WithAttributes(cache, attribute.String("result", "hit")))
			o.ObserveInt64(ops, m.Misses, metric.WithAttributes(cache, attribute.String("result", "miss")))
			o.ObserveInt64(ops, m.Sets, metric.WithAttributes(cache, attribute.String("result", "fill")))
		}
		return nil
	}, ops)
}
