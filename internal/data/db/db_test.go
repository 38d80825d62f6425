package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(logger.NewNop(), Config{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "insights.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, AutoMigrateAll(svc.DB()))
	for _, table := range []string{"study_session", "flashcard_progress", "study_preference_profile"} {
		assert.True(t, svc.DB().Migrator().HasTable(table), table)
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	_, err := NewService(logger.NewNop(), Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", cfg.postgresDSN())
}
