package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

func TestClampBackoff(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, clampBackoff(0, 0, 1))
	assert.Equal(t, 400*time.Millisecond, clampBackoff(100*time.Millisecond, time.Second, 3))
	assert.Equal(t, time.Second, clampBackoff(100*time.Millisecond, time.Second, 10))
}

func TestIsRetryableRPC(t *testing.T) {
	assert.False(t, isRetryableRPC(nil))
	assert.True(t, isRetryableRPC(status.Error(codes.Unavailable, "down")))
	assert.False(t, isRetryableRPC(status.Error(codes.PermissionDenied, "no")))
	assert.True(t, isRetryableRPC(context.DeadlineExceeded))
	assert.False(t, isRetryableRPC(errors.New("other")))
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "insights", cfg.TaskQueue)
	c, err := NewClient(logger.NewNop(), cfg)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestLoadTLSConfigRequiresPair(t *testing.T) {
	_, err := loadTLSConfig(Config{ClientCAPath: "/tmp/ca.pem"})
	assert.Error(t, err)
}
