package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/domain"
)

const (
	analyticsKeyPrefix = "analytics:"
	abcKey             = analyticsKeyPrefix + "abc:default"
	overviewKeyPrefix  = analyticsKeyPrefix + "overview"
)

// AnalyticsCache holds read-side analytics between catalog changes.
type AnalyticsCache interface {
	GetABC(ctx context.Context) (*domain.ABCResult, bool, error)
	SetABC(ctx context.Context, result *domain.ABCResult) error
	GetOverview(ctx context.Context, topN int) (*domain.InventoryOverview, bool, error)
	SetOverview(ctx context.Context, topN int, overview *domain.InventoryOverview) error
	// InvalidateAll drops every analytics entry; called after stock changes.
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

// NewAnalyticsCache returns a Redis-backed cache, or a no-op one when caching is disabled.
func NewAnalyticsCache(cfg config.CacheConfig, client *redis.Client) AnalyticsCache {
	if !cfg.Enabled || client == nil {
		return &noopAnalyticsCache{}
	}

	return &redisAnalyticsCache{
		client: client,
		ttl:    cacheTTL(cfg),
	}
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetABC(ctx context.Context) (*domain.ABCResult, bool, error) {
	var result domain.ABCResult
	hit, err := getJSON(ctx, c.client, abcKey, &result)
	if err != nil || !hit {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisAnalyticsCache) SetABC(ctx context.Context, result *domain.ABCResult) error {
	return setJSON(ctx, c.client, abcKey, result, c.ttl)
}

func (c *redisAnalyticsCache) GetOverview(ctx context.Context, topN int) (*domain.InventoryOverview, bool, error) {
	var overview domain.InventoryOverview
	hit, err := getJSON(ctx, c.client, buildOverviewKey(topN), &overview)
	if err != nil || !hit {
		return nil, false, err
	}
	return &overview, true, nil
}

func (c *redisAnalyticsCache) SetOverview(ctx context.Context, topN int, overview *domain.InventoryOverview) error {
	return setJSON(ctx, c.client, buildOverviewKey(topN), overview, c.ttl)
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, scanBatchSize)
}

func (n *noopAnalyticsCache) GetABC(ctx context.Context) (*domain.ABCResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetABC(ctx context.Context, result *domain.ABCResult) error {
	return nil
}

func (n *noopAnalyticsCache) GetOverview(ctx context.Context, topN int) (*domain.InventoryOverview, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetOverview(ctx context.Context, topN int, overview *domain.InventoryOverview) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildOverviewKey(topN int) string {
	if topN <= 0 {
		return overviewKeyPrefix + ":default"
	}

	raw := fmt.Sprintf("top=%d", topN)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", overviewKeyPrefix, hex.EncodeToString(hash[:]))
}
