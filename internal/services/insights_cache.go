package services

import (
	"context"
	"time"

	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

// ByteCache is implemented by the in-process ristretto cache and the Redis cache.
type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CacheLayer struct {
	Name  string
	Cache ByteCache
}

// TieredCache reads layers in order and backfills faster layers on a hit further down.
// Layer errors are logged and treated as misses.
type TieredCache struct {
	log     *logger.Logger
	metrics *observability.Metrics
	layers  []CacheLayer
	ttl     time.Duration
}

func NewTieredCache(log *logger.Logger, metrics *observability.Metrics, ttl time.Duration, layers ...CacheLayer) *TieredCache {
	kept := make([]CacheLayer, 0, len(layers))
	for _, l := range layers {
		if l.Cache != nil {
			kept = append(kept, l)
		}
	}
	return &TieredCache{
		log:     log.With("service", "TieredCache"),
		metrics: metrics,
		layers:  kept,
		ttl:     ttl,
	}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, l := range c.layers {
		val, ok, err := l.Cache.Get(ctx, key)
		if err != nil {
			c.log.Warn("cache get failed", "layer", l.Name, "error", err)
			continue
		}
		c.metrics.CacheLookup(l.Name, ok)
		if !ok {
			continue
		}
		for _, upper := range c.layers[:i] {
			if err := upper.Cache.Set(ctx, key, val, c.ttl); err != nil {
				c.log.Warn("cache backfill failed", "layer", upper.Name, "error", err)
			}
		}
		return val, true, nil
	}
	return nil, false, nil
}

func (c *TieredCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	for _, l := range c.layers {
		if err := l.Cache.Set(ctx, key, val, ttl); err != nil {
			c.log.Warn("cache set failed", "layer", l.Name, "error", err)
		}
	}
	return nil
}

func (c *TieredCache) Delete(ctx context.Context, key string) error {
	for _, l := range c.layers {
		if err := l.Cache.Delete(ctx, key); err != nil {
			c.log.Warn("cache delete failed", "layer", l.Name, "error", err)
		}
	}
	return nil
}
