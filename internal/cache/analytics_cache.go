package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/config"
	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	analyticsKeyPrefix     = "analytics:"
	analyticsScanBatchSize = 100
)

// AnalyticsCache fronts the dashboard aggregation queries. Writes to
// forecasts, pricing or routes invalidate everything under the prefix.
type AnalyticsCache interface {
	GetSummary(ctx context.Context, window time.Duration) (*domain.AnalyticsSummary, bool, error)
	SetSummary(ctx context.Context, window time.Duration, summary *domain.AnalyticsSummary) error
	GetReport(ctx context.Context, name string, out interface{}) (bool, error)
	SetReport(ctx context.Context, name string, report interface{}) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{client: client, ttl: ttl}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetSummary(ctx context.Context, window time.Duration) (*domain.AnalyticsSummary, bool, error) {
	var summary domain.AnalyticsSummary
	found, err := c.get(ctx, summaryKey(window), &summary)
	if err != nil || !found {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisAnalyticsCache) SetSummary(ctx context.Context, window time.Duration, summary *domain.AnalyticsSummary) error {
	return c.set(ctx, summaryKey(window), summary)
}

func (c *redisAnalyticsCache) GetReport(ctx context.Context, name string, out interface{}) (bool, error) {
	return c.get(ctx, reportKey(name), out)
}

func (c *redisAnalyticsCache) SetReport(ctx context.Context, name string, report interface{}) error {
	return c.set(ctx, reportKey(name), report)
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, analyticsScanBatchSize)
}

func (c *redisAnalyticsCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode analytics cache: %w", err)
	}
	return true, nil
}

func (c *redisAnalyticsCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopAnalyticsCache) GetSummary(ctx context.Context, window time.Duration) (*domain.AnalyticsSummary, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetSummary(ctx context.Context, window time.Duration, summary *domain.AnalyticsSummary) error {
	return nil
}

func (n *noopAnalyticsCache) GetReport(ctx context.Context, name string, out interface{}) (bool, error) {
	return false, nil
}

func (n *noopAnalyticsCache) SetReport(ctx context.Context, name string, report interface{}) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func summaryKey(window time.Duration) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("window=%s", window)))
	return analyticsKeyPrefix + "summary:" + hex.EncodeToString(sum[:])
}

func reportKey(name string) string {
	return analyticsKeyPrefix + "report:" + name
}
