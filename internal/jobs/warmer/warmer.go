package warmer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

// ActiveUserLister lists users with sessions since a cutoff.
type ActiveUserLister interface {
	ListActiveUsers(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error)
}

type Config struct {
	IntervalMinutes int
	ActiveWithin    time.Duration
	MaxUsers        int
	RunTimeout      time.Duration
}

// Warmer periodically recomputes insights for recently active users so reads hit the cache.
type Warmer struct {
	log       *logger.Logger
	cfg       Config
	users     ActiveUserLister
	refresher services.InsightsRefresher
	metrics   *observability.Metrics
	scheduler *gocron.Scheduler
	now       func() time.Time
}

func New(baseLog *logger.Logger, cfg Config, users ActiveUserLister, refresher services.InsightsRefresher, metrics *observability.Metrics) *Warmer {
	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = 30
	}
	if cfg.ActiveWithin <= 0 {
		cfg.ActiveWithin = 24 * time.Hour
	}
	if cfg.MaxUsers <= 0 {
		cfg.MaxUsers = 1000
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	return &Warmer{
		log:       baseLog.With("component", "InsightsWarmer"),
		cfg:       cfg,
		users:     users,
		refresher: refresher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Start schedules RunOnce every IntervalMinutes. Runs never overlap.
func (w *Warmer) Start(ctx context.Context) error {
	if w.scheduler != nil {
		return nil
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(w.cfg.IntervalMinutes).Minutes().Do(func() {
		rctx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
		defer cancel()
		if _, err := w.RunOnce(rctx); err != nil {
			w.log.Warn("insights warm run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule insights warmer: %w", err)
	}
	s.StartAsync()
	w.scheduler = s
	w.log.Info("insights warmer started", "interval_minutes", w.cfg.IntervalMinutes)
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}

func (w *Warmer) RunOnce(ctx context.Context) (services.RefreshSummary, error) {
	start := time.Now()
	since := w.now().UTC().Add(-w.cfg.ActiveWithin)
	ids, err := w.users.ListActiveUsers(ctx, since, w.cfg.MaxUsers)
	if err != nil {
		w.metrics.WarmerRun(err)
		return services.RefreshSummary{}, fmt.Errorf("list active users: %w", err)
	}
	if len(ids) == 0 {
		w.metrics.WarmerRun(nil)
		return services.RefreshSummary{}, nil
	}
	sum, err := w.refresher.RefreshUsers(ctx, ids)
	w.metrics.WarmerRun(err)
	if err != nil {
		return sum, fmt.Errorf("refresh active users: %w", err)
	}
	w.log.Info("insights warm run finished",
		"users", len(ids),
		"refreshed", sum.Refreshed,
		"failed", sum.Failed,
		"workflow_id", sum.WorkflowID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sum, nil
}
