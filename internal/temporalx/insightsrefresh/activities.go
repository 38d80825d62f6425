package insightsrefresh

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/pkg/httpx"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

const (
	ErrTypeInvalidUser = "InvalidUser"
	errTypeRefresh     = "RefreshFailed"
)

type Activities struct {
	Log      *logger.Logger
	Insights services.InsightsService
	Metrics  *observability.Metrics
}

func (a *Activities) RefreshUser(ctx context.Context, userID string) (UserResult, error) {
	res := UserResult{UserID: strings.TrimSpace(userID)}
	if a == nil || a.Insights == nil {
		return res, fmt.Errorf("insightsrefresh: activity not configured")
	}
	id, err := uuid.Parse(res.UserID)
	if err != nil || id == uuid.Nil {
		return res, temporal.NewNonRetryableApplicationError("invalid user id", ErrTypeInvalidUser, err)
	}
	activity.RecordHeartbeat(ctx, res.UserID)

	out, err := a.Insights.Refresh(ctx, id)
	a.Metrics.RefreshUser(err)
	if err != nil {
		if a.Log != nil {
			a.Log.Warn("insights refresh activity failed", "user_id", id, "error", err)
		}
		if !httpx.IsRetryableError(err) {
			return res, temporal.NewNonRetryableApplicationError(err.Error(), errTypeRefresh, err)
		}
		return res, err
	}
	res.DataStatus = string(out.Insights.DataStatus)
	res.Paths = len(out.Insights.LearningPaths)
	return res, nil
}
