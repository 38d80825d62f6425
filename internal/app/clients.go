package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-insights/internal/data/db"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/localcache"
	"github.com/yungbote/neurobridge-insights/internal/platform/neo4jdb"
	"github.com/yungbote/neurobridge-insights/internal/platform/redis"
	"github.com/yungbote/neurobridge-insights/internal/temporalx"
)

// Clients holds every external connection. Redis, Neo4j and Temporal are optional and stay nil when unset.
type Clients struct {
	DBService *db.Service
	DB        *gorm.DB
	Local     *localcache.Cache
	Redis     *goredis.Client
	Graph     *neo4jdb.Client
	Temporal  temporalsdkclient.Client
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	var out Clients

	log.Info("Connecting to database...", "driver", cfg.DB.Driver)
	dbs, err := db.NewService(log, cfg.DB)
	if err != nil {
		return out, fmt.Errorf("init database: %w", err)
	}
	out.DBService = dbs
	out.DB = dbs.DB()
	if err := db.AutoMigrateAll(out.DB); err != nil {
		out.Close(log)
		return out, fmt.Errorf("database automigrate: %w", err)
	}
	if sqlDB, err := out.DB.DB(); err == nil {
		metrics.RegisterDB(sqlDB, cfg.DB.Driver)
	}

	local, err := localcache.New(cfg.LocalCacheBytes)
	if err != nil {
		out.Close(log)
		return out, fmt.Errorf("init local cache: %w", err)
	}
	out.Local = local

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(log, cfg.Redis)
		if err != nil {
			out.Close(log)
			return out, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	} else {
		log.Info("REDIS_ADDR unset; shared cache and cross-instance invalidation disabled")
	}

	graph, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j init failed; learning path export disabled", "error", err)
	}
	out.Graph = graph

	tc, err := temporalx.NewClient(log, cfg.Temporal)
	if err != nil {
		out.Close(log)
		return out, fmt.Errorf("init temporal: %w", err)
	}
	out.Temporal = tc

	return out, nil
}

func (c *Clients) Close(log *logger.Logger) {
	if c.Temporal != nil {
		c.Temporal.Close()
		c.Temporal = nil
	}
	if c.Graph != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Graph.Close(ctx); err != nil {
			log.Warn("Neo4j close failed", "error", err)
		}
		cancel()
		c.Graph = nil
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("Redis close failed", "error", err)
		}
		c.Redis = nil
	}
	if c.Local != nil {
		_ = c.Local.Close()
		c.Local = nil
	}
	if c.DBService != nil {
		if err := c.DBService.Close(); err != nil {
			log.Warn("Database close failed", "error", err)
		}
		c.DBService = nil
	}
}
