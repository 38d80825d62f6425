package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
)

func TestComputeCommandEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sessions":[],"progress":[]}`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"compute", "--input", path, "--timezone", "UTC"})
	require.NoError(t, rootCmd.Execute())

	var got insights.Insights
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, insights.DataStatusInsufficient, got.DataStatus)
}

func TestComputeCommandRejectsInvalidSnapshot(t *testing.T) {
	rootCmd.SetIn(bytes.NewBufferString(`{"sessions":[{"startTime":"2024-01-01T10:00:00Z","cardsReviewed":1,"cardsCorrect":5}]}`))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"compute", "--input", "-", "--timezone", "UTC"})
	require.Error(t, rootCmd.Execute())
}
