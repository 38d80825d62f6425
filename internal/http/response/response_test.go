package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yungbote/neurobridge-insights/internal/pkg/errors"
	"github.com/yungbote/neurobridge-insights/internal/platform/apierr"
)

func TestRespondErrMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{apierr.New(http.StatusBadRequest, "invalid_timezone", errors.New("bad tz")), http.StatusBadRequest, "invalid_timezone", false},
		{fmt.Errorf("wrap: %w", apperrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument", false},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthenticated", false},
		{apperrors.ErrNotFound, http.StatusNotFound, "not_found", false},
		{apperrors.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", true},
		{fmt.Errorf("db: %w", apperrors.ErrUnavailable), http.StatusServiceUnavailable, "unavailable", true},
		{errors.New("boom"), http.StatusInternalServerError, "internal", true},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			RespondErr(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.retryable, env.Error.Retryable)
		})
	}
}
