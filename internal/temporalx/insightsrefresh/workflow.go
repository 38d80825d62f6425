package insightsrefresh

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// maxInFlight bounds concurrent refresh activities per workflow run.
const maxInFlight = 8

// Workflow refreshes each user once. Per-user failures are counted, not fatal.
func Workflow(ctx workflow.Context, in Input) (Summary, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidUser},
		},
	})

	ids := dedupe(in.UserIDs)
	sum := Summary{Requested: len(ids)}
	log := workflow.GetLogger(ctx)

	for start := 0; start < len(ids); start += maxInFlight {
		end := start + maxInFlight
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		futures := make([]workflow.Future, len(batch))
		for i, id := range batch {
			futures[i] = workflow.ExecuteActivity(ctx, ActivityRefreshUser, id)
		}
		for i, f := range futures {
			var res UserResult
			if err := f.Get(ctx, &res); err != nil {
				log.Warn("insights refresh failed", "user_id", batch[i], "error", err)
				sum.Failed++
				sum.FailedIDs = append(sum.FailedIDs, batch[i])
				continue
			}
			sum.Refreshed++
		}
	}
	return sum, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
