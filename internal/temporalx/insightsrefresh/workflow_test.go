package insightsrefresh

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	apperrors "github.com/yungbote/neurobridge-insights/internal/pkg/errors"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/apierr"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

type stubInsights struct {
	services.InsightsService
	mu    sync.Mutex
	calls map[uuid.UUID]int
	fail  map[uuid.UUID]error
}

func (s *stubInsights) Refresh(_ context.Context, id uuid.UUID) (*services.InsightsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[uuid.UUID]int{}
	}
	s.calls[id]++
	if err := s.fail[id]; err != nil {
		return nil, err
	}
	return &services.InsightsResult{Insights: &insights.Insights{
		DataStatus:    insights.DataStatusReady,
		LearningPaths: []insights.LearningPath{{Subject: "math"}},
	}}, nil
}

func runWorkflow(t *testing.T, svc *stubInsights, in Input) Summary {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := &Activities{Log: logger.NewNop(), Insights: svc}
	env.RegisterWorkflow(Workflow)
	env.RegisterActivityWithOptions(acts.RefreshUser, activity.RegisterOptions{Name: ActivityRefreshUser})

	env.ExecuteWorkflow(Workflow, in)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var sum Summary
	require.NoError(t, env.GetWorkflowResult(&sum))
	return sum
}

func TestWorkflowRefreshesEachUserOnce(t *testing.T) {
	svc := &stubInsights{}
	var ids []string
	for i := 0; i < maxInFlight+3; i++ {
		ids = append(ids, uuid.NewString())
	}
	ids = append(ids, ids[0], " ", "")

	sum := runWorkflow(t, svc, Input{UserIDs: ids})
	assert.Equal(t, maxInFlight+3, sum.Requested)
	assert.Equal(t, maxInFlight+3, sum.Refreshed)
	assert.Zero(t, sum.Failed)
	for _, n := range svc.calls {
		assert.Equal(t, 1, n)
	}
}

func TestWorkflowCountsFailures(t *testing.T) {
	good := uuid.New()
	gone := uuid.New()
	svc := &stubInsights{fail: map[uuid.UUID]error{
		gone: apierr.BadRequest("invalid_preferences", apperrors.ErrInvalidArgument),
	}}

	sum := runWorkflow(t, svc, Input{UserIDs: []string{good.String(), gone.String(), "not-a-uuid"}})
	assert.Equal(t, 3, sum.Requested)
	assert.Equal(t, 1, sum.Refreshed)
	assert.Equal(t, 2, sum.Failed)
	assert.ElementsMatch(t, []string{gone.String(), "not-a-uuid"}, sum.FailedIDs)
	assert.Equal(t, 1, svc.calls[gone], "non-retryable failures run once")
}

func TestWorkflowRetriesTransientFailures(t *testing.T) {
	flaky := uuid.New()
	svc := &stubInsights{fail: map[uuid.UUID]error{
		flaky: apierr.Unavailable("insights_unavailable", apperrors.ErrUnavailable),
	}}

	sum := runWorkflow(t, svc, Input{UserIDs: []string{flaky.String()}})
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 3, svc.calls[flaky])
}

func TestActivityRejectsUnconfigured(t *testing.T) {
	var a *Activities
	_, err := a.RefreshUser(context.Background(), uuid.NewString())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
