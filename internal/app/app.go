package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-insights/internal/data/repos"
	server "github.com/yungbote/neurobridge-insights/internal/http"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/redis"
)

const shutdownTimeout = 20 * time.Second

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    repos.Repos
	Services Services
	Server   *server.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(log *logger.Logger, cfg Config) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "neurobridge-insights",
		Environment: cfg.Env,
		Version:     cfg.Version,
	})
	metrics := observability.Init()

	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, err
	}

	reposet := repos.New(clients.DB, log)

	serviceset, err := wireServices(log, cfg, clients, reposet, metrics)
	if err != nil {
		clients.Close(log)
		_ = otelShutdown(context.Background())
		return nil, err
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       wireHTTP(log, cfg, clients, serviceset, metrics),
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background workers. It is a no-op when already started.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if bus := a.Services.Bus; bus != nil {
		if err := bus.StartForwarder(ctx, func(m redis.Invalidation) {
			a.Services.Insights.HandleInvalidation(ctx, m)
		}); err != nil {
			return fmt.Errorf("start invalidation forwarder: %w", err)
		}
	}
	if w := a.Services.TemporalWorker; w != nil {
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.Log.Error("Temporal worker stopped", "error", err)
			}
		}()
	}
	if w := a.Services.Warmer; w != nil {
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start warmer: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until SIGINT/SIGTERM or a server error, then shuts everything down.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.Start(); err != nil {
		a.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	a.Close()
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Warmer != nil {
		a.Services.Warmer.Stop()
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close(a.Log)
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	a.Log.Sync()
}
