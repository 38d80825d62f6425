package services

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

// RefreshSummary reports one batch refresh. WorkflowID is set when the batch was handed to Temporal.
type RefreshSummary struct {
	Requested  int    `json:"requested"`
	Refreshed  int    `json:"refreshed"`
	Failed     int    `json:"failed"`
	WorkflowID string `json:"workflowId,omitempty"`
	Async      bool   `json:"async"`
}

// InsightsRefresher recomputes cached insights for a batch of users.
type InsightsRefresher interface {
	RefreshUsers(ctx context.Context, userIDs []uuid.UUID) (RefreshSummary, error)
}

type inlineRefresher struct {
	log         *logger.Logger
	svc         InsightsService
	concurrency int
}

// NewInlineRefresher refreshes users in-process with at most concurrency computations in flight.
func NewInlineRefresher(baseLog *logger.Logger, svc InsightsService, concurrency int) InsightsRefresher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &inlineRefresher{log: baseLog.With("service", "InlineRefresher"), svc: svc, concurrency: concurrency}
}

func (r *inlineRefresher) RefreshUsers(ctx context.Context, userIDs []uuid.UUID) (RefreshSummary, error) {
	var refreshed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, id := range userIDs {
		if id == uuid.Nil {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			_, err := r.svc.Refresh(gctx, id)
			observability.Current().RefreshUser(err)
			if err != nil {
				failed.Add(1)
				r.log.Warn("inline refresh failed", "user_id", id, "error", err)
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return RefreshSummary{
		Requested: len(userIDs),
		Refreshed: int(refreshed.Load()),
		Failed:    int(failed.Load()),
	}, err
}
