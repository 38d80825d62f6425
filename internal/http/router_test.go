package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-insights/internal/data/repos"
	"github.com/yungbote/neurobridge-insights/internal/data/repos/testutil"
	httpH "github.com/yungbote/neurobridge-insights/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-insights/internal/http/middleware"
	"github.com/yungbote/neurobridge-insights/internal/observability"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

type routerFixture struct {
	engine *gin.Engine
	token  string
}

func newRouterFixture(t *testing.T, computePerMinute int) routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)
	r := repos.New(db, log)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	auth := services.NewAuthService(log, "test-secret", "", time.Hour)
	svc := services.NewInsightsService(log, services.InsightsServiceConfig{}, services.InsightsDeps{
		Sessions:    r.StudySessions,
		Progress:    r.FlashcardProgress,
		Preferences: r.StudyPreferences,
		Metrics:     metrics,
	})
	tok, err := auth.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	engine := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		ComputeLimiter:  httpMW.NewRateLimiter(computePerMinute, computePerMinute, metrics),
		InsightsHandler: httpH.NewInsightsHandler(svc, nil),
		HealthHandler:   httpH.NewHealthHandler(nil),
	})
	return routerFixture{engine: engine, token: tok}
}

func (f routerFixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicRoutes(t *testing.T) {
	f := newRouterFixture(t, 10)

	rec := f.do(http.MethodGet, "/healthcheck", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = f.do(http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/insights", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "insights_http_requests_total")
}

func TestRouterInsightsFlow(t *testing.T) {
	f := newRouterFixture(t, 10)

	rec := f.do(http.MethodGet, "/api/insights", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var res services.InsightsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Insights)
	assert.Equal(t, "insufficient_data", string(res.Insights.DataStatus))

	rec = f.do(http.MethodPut, "/api/insights/preferences", `{"maxDailyStudyTime":5000}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_preferences")

	rec = f.do(http.MethodPut, "/api/insights/preferences", `{"maxDailyStudyTime":90,"timezone":"UTC"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"maxDailyStudyTime":90`)

	rec = f.do(http.MethodGet, "/api/insights/learning-paths?subject=math", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"learningPaths":[]}`, rec.Body.String())
}

func TestRouterComputeValidationAndRateLimit(t *testing.T) {
	f := newRouterFixture(t, 2)

	rec := f.do(http.MethodPost, "/api/insights/compute", `{"progress":[{"masteryLevel":7}]}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")

	rec = f.do(http.MethodPost, "/api/insights/compute", `{}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/insights/compute", `{}`, true)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
