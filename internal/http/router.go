package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-insights/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-insights/internal/http/middleware"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TracingService enables otelgin spans under this service name when set.
	TracingService string

	AuthMiddleware *httpMW.AuthMiddleware
	ComputeLimiter *httpMW.RateLimiter

	InsightsHandler *httpH.InsightsHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Insights
		if h := cfg.InsightsHandler; h != nil {
			protected.GET("/insights", h.GetInsights)
			protected.POST("/insights/refresh", h.Refresh)
			protected.GET("/insights/learning-paths", h.LearningPaths)
			protected.GET("/insights/preferences", h.GetPreferences)
			protected.PUT("/insights/preferences", h.UpdatePreferences)
			if cfg.ComputeLimiter != nil {
				protected.POST("/insights/compute", cfg.ComputeLimiter.Middleware(), h.Compute)
			} else {
				protected.POST("/insights/compute", h.Compute)
			}
		}
	}

	return r
}
