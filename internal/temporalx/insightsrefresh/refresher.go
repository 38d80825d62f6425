package insightsrefresh

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

// Refresher hands refresh batches to Temporal and returns without waiting for them.
type Refresher struct {
	log       *logger.Logger
	tc        temporalsdkclient.Client
	taskQueue string
	reason    string
}

func NewRefresher(log *logger.Logger, tc temporalsdkclient.Client, taskQueue, reason string) *Refresher {
	return &Refresher{log: log.With("service", "TemporalRefresher"), tc: tc, taskQueue: taskQueue, reason: reason}
}

var _ services.InsightsRefresher = (*Refresher)(nil)

func (r *Refresher) RefreshUsers(ctx context.Context, userIDs []uuid.UUID) (services.RefreshSummary, error) {
	in := Input{Reason: r.reason}
	for _, id := range userIDs {
		if id != uuid.Nil {
			in.UserIDs = append(in.UserIDs, id.String())
		}
	}
	sum := services.RefreshSummary{Requested: len(userIDs), Async: true}
	if len(in.UserIDs) == 0 {
		return sum, nil
	}
	workflowID := "insights-refresh-" + uuid.NewString()
	run, err := r.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: r.taskQueue,
	}, WorkflowName, in)
	if err != nil {
		return sum, fmt.Errorf("start %s workflow: %w", WorkflowName, err)
	}
	sum.WorkflowID = run.GetID()
	r.log.Debug("insights refresh enqueued", "workflow_id", sum.WorkflowID, "users", len(in.UserIDs))
	return sum, nil
}
