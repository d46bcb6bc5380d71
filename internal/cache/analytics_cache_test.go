package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/chainopt/internal/config"
)

func TestNewAnalyticsCacheDisabled(t *testing.T) {
	c, err := NewAnalyticsCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	_, ok := c.(*noopAnalyticsCache)
	assert.True(t, ok, "disabled cache must be the no-op implementation")
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NewNoopAnalyticsCache()
	ctx := context.Background()

	summary, found, err := c.GetSummary(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, summary)

	found, err = c.GetReport(ctx, "route_savings", nil)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.SetSummary(ctx, time.Hour, nil))
	assert.NoError(t, c.SetReport(ctx, "route_savings", nil))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestSummaryKeyStability(t *testing.T) {
	assert.Equal(t, summaryKey(time.Hour), summaryKey(time.Hour))
	assert.NotEqual(t, summaryKey(time.Hour), summaryKey(24*time.Hour))
	assert.True(t, strings.HasPrefix(summaryKey(time.Hour), analyticsKeyPrefix))
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "analytics:report:forecast_accuracy", reportKey("forecast_accuracy"))
}
