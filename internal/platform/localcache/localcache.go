package localcache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is an in-process byte cache bounded by total payload size.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

func New(maxBytes int64) (*Cache, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.c.Get(key)
	return v, ok, nil
}

// Set is asynchronous; a Get right after Set may miss until Wait returns.
func (c *Cache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, val, int64(len(val)), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

func (c *Cache) Wait() { c.c.Wait() }

func (c *Cache) Close() error {
	c.c.Close()
	return nil
}
