package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

// InsightsCache stores serialized insights under a namespaced key.
type InsightsCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

func NewInsightsCache(log *logger.Logger, rdb goredis.UniversalClient) *InsightsCache {
	return &InsightsCache{
		log:    log.With("service", "RedisInsightsCache"),
		rdb:    rdb,
		prefix: "insights:v1:",
	}
}

func (c *InsightsCache) key(k string) string { return c.prefix + k }

func (c *InsightsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return raw, true, nil
}

func (c *InsightsCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.key(key), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *InsightsCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
