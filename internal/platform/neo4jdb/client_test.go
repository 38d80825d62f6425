package neo4jdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

func TestNewFromEnvDisabledWithoutURI(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	c, err := NewFromEnv(logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, c.Close(context.Background()))
}

func TestNewFromEnvRequiresLogger(t *testing.T) {
	_, err := NewFromEnv(nil)
	assert.Error(t, err)
}
