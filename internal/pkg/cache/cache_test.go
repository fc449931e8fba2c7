package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/models"
)

func TestUnifiedCache_GetOrLoad(t *testing.T) {
	c := NewUnifiedCache[[]string](time.Minute, "test", zap.NewNop())
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	v, err := c.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)

	v, err = c.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, CacheMetrics{Hits: 1, Misses: 1, Sets: 1}, c.GetMetrics())
}

func TestUnifiedCache_FailuresAreNotCached(t *testing.T) {
	c := NewUnifiedCache[int](time.Minute, "test", nil)
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestUnifiedCache_ZeroTTLDisables(t *testing.T) {
	c := NewUnifiedCache[int](0, "off", nil)
	calls := 0
	for i := 0; i < 3; i++ {
		_, _ = c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
	}
	assert.False(t, c.Enabled())
	assert.Equal(t, 3, calls)
}

func TestCacheManager_RegisterMetricsReportsCounters(t *testing.T) {
	cm := NewCacheManager(time.Minute, nil)
	cm.Blogs.Set("all", []models.Blog{{ID: "b1"}})
	_, _ = cm.Blogs.Get("all")
	_, _ = cm.Blogs.Get("other")

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	_, err := cm.RegisterMetrics(provider.Meter("test"))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "content_cache_operations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				cache, _ := dp.Attributes.Value("cache")
				result, _ := dp.Attributes.Value("result")
				got[cache.AsString()+"/"+result.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), got["blogs/hit"])
	assert.Equal(t, int64(1), got["blogs/miss"])
	assert.Equal(t, int64(1), got["blogs/fill"])
	assert.Equal(t, int64(0), got["events/fill"])
}
