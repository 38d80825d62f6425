package app

import (
	"context"

	server "github.com/yungbote/neurobridge-insights/internal/http"
	httpH "github.com/yungbote/neurobridge-insights/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-insights/internal/http/middleware"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

func wireHTTP(log *logger.Logger, cfg Config, clients Clients, svc Services, metrics *observability.Metrics) *server.Server {
	log.Info("Wiring HTTP...")

	checks := map[string]httpH.ReadinessCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}
	if clients.Graph != nil {
		checks["neo4j"] = func(ctx context.Context) error {
			return clients.Graph.Driver.VerifyConnectivity(ctx)
		}
	}

	tracing := ""
	if observability.TracingEnabled() {
		tracing = "neurobridge-insights"
	}

	return server.NewServer(cfg.HTTPAddr, server.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		CORSOrigins:     cfg.CORSOrigins,
		TracingService:  tracing,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, svc.Auth),
		ComputeLimiter:  httpMW.NewRateLimiter(cfg.ComputePerMinute, cfg.ComputeBurst, metrics),
		InsightsHandler: httpH.NewInsightsHandler(svc.Insights, svc.APIRefresher),
		HealthHandler:   httpH.NewHealthHandler(checks),
	})
}
