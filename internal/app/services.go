package app

import (
	"fmt"

	"github.com/yungbote/neurobridge-insights/internal/data/repos"
	"github.com/yungbote/neurobridge-insights/internal/jobs/warmer"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/redis"
	"github.com/yungbote/neurobridge-insights/internal/services"
	"github.com/yungbote/neurobridge-insights/internal/temporalx/insightsrefresh"
	"github.com/yungbote/neurobridge-insights/internal/temporalx/temporalworker"
)

type Services struct {
	Insights  services.InsightsService
	Auth      services.AuthService
	Refresher services.InsightsRefresher
	// APIRefresher is set only when refreshes are queued; nil means the handler recomputes inline.
	APIRefresher services.InsightsRefresher
	Bus          redis.InvalidationBus

	// Optional background runners.
	Warmer         *warmer.Warmer
	TemporalWorker *temporalworker.Runner
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet repos.Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	var out Services

	layers := []services.CacheLayer{{Name: "local", Cache: clients.Local}}
	if clients.Redis != nil {
		layers = append(layers, services.CacheLayer{Name: "redis", Cache: redis.NewInsightsCache(log, clients.Redis)})
		out.Bus = redis.NewInvalidationBus(log, clients.Redis, cfg.Redis.Channel)
	}

	deps := services.InsightsDeps{
		Sessions:    reposet.StudySessions,
		Progress:    reposet.FlashcardProgress,
		Preferences: reposet.StudyPreferences,
		Cache:       services.NewTieredCache(log, metrics, cfg.Insights.CacheTTL, layers...),
		Local:       clients.Local,
		Bus:         out.Bus,
		Graph:       clients.Graph,
		Metrics:     metrics,
	}
	out.Insights = services.NewInsightsService(log, cfg.Insights, deps)
	out.Auth = services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL)

	if clients.Temporal != nil {
		out.Refresher = insightsrefresh.NewRefresher(log, clients.Temporal, cfg.Temporal.TaskQueue, "api")
		out.APIRefresher = out.Refresher
		if cfg.RunWorker {
			runner, err := temporalworker.NewRunner(log, cfg.Temporal, clients.Temporal, out.Insights, metrics)
			if err != nil {
				return out, fmt.Errorf("init temporal worker: %w", err)
			}
			out.TemporalWorker = runner
		}
	} else {
		out.Refresher = services.NewInlineRefresher(log, out.Insights, cfg.RefreshConcurrency)
	}

	if cfg.WarmEnabled {
		out.Warmer = warmer.New(log, cfg.Warmer, out.Insights, out.Refresher, metrics)
	}
	return out, nil
}
