package warmer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

type fakeLister struct {
	ids   []uuid.UUID
	err   error
	since time.Time
	limit int
}

func (f *fakeLister) ListActiveUsers(_ context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	f.since, f.limit = since, limit
	return f.ids, f.err
}

type fakeRefresher struct {
	calls chan []uuid.UUID
}

func (f *fakeRefresher) RefreshUsers(_ context.Context, ids []uuid.UUID) (services.RefreshSummary, error) {
	f.calls <- ids
	return services.RefreshSummary{Requested: len(ids), Refreshed: len(ids)}, nil
}

func TestRunOnce(t *testing.T) {
	users := &fakeLister{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	ref := &fakeRefresher{calls: make(chan []uuid.UUID, 1)}
	w := New(logger.NewNop(), Config{ActiveWithin: 6 * time.Hour, MaxUsers: 50}, users, ref, nil)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	sum, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Refreshed)
	assert.Equal(t, now.Add(-6*time.Hour), users.since)
	assert.Equal(t, 50, users.limit)
	assert.Equal(t, users.ids, <-ref.calls)
}

func TestRunOnceNoUsersSkipsRefresh(t *testing.T) {
	ref := &fakeRefresher{calls: make(chan []uuid.UUID, 1)}
	w := New(logger.NewNop(), Config{}, &fakeLister{}, ref, nil)
	sum, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Requested)
	assert.Len(t, ref.calls, 0)
}

func TestRunOnceListError(t *testing.T) {
	w := New(logger.NewNop(), Config{}, &fakeLister{err: errors.New("db down")}, &fakeRefresher{}, nil)
	_, err := w.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	users := &fakeLister{ids: []uuid.UUID{uuid.New()}}
	ref := &fakeRefresher{calls: make(chan []uuid.UUID, 4)}
	w := New(logger.NewNop(), Config{IntervalMinutes: 60}, users, ref, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	select {
	case ids := <-ref.calls:
		assert.Equal(t, users.ids, ids)
	case <-time.After(5 * time.Second):
		t.Fatal("warmer did not run on start")
	}
	w.Stop()
}
