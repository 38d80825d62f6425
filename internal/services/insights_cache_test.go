package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-insights/internal/data/repos"
	"github.com/yungbote/neurobridge-insights/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-insights/internal/domain"
	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/platform/localcache"
)

func newLocal(t *testing.T) *localcache.Cache {
	t.Helper()
	c, err := localcache.New(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTieredCacheBackfillsUpperLayers(t *testing.T) {
	ctx := context.Background()
	l1, l2 := newLocal(t), newLocal(t)
	tc := NewTieredCache(testutil.Logger(t), nil, time.Minute,
		CacheLayer{Name: "local", Cache: l1},
		CacheLayer{Name: "nil", Cache: nil},
		CacheLayer{Name: "shared", Cache: l2},
	)

	require.NoError(t, l2.Set(ctx, "k", []byte("v"), time.Minute))
	l2.Wait()

	got, ok, err := tc.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	l1.Wait()
	got, ok, _ = l1.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, tc.Delete(ctx, "k"))
	_, ok, _ = tc.Get(ctx, "k")
	assert.False(t, ok)
}

func TestToEngineSessionsDropsMalformedRows(t *testing.T) {
	neg := -5
	ok := 600
	set := uuid.New()
	rows := []*types.StudySession{
		nil,
		{ID: uuid.New(), StartTime: time.Now(), DurationSeconds: &ok, CardsReviewed: 4, CardsCorrect: 3, FlashcardSetID: &set},
		{ID: uuid.New(), StartTime: time.Now(), DurationSeconds: &neg},
		{ID: uuid.New(), StartTime: time.Now(), CardsReviewed: 1, CardsCorrect: 2},
		{ID: uuid.New()},
	}
	out := toEngineSessions(testutil.Logger(t), rows)
	require.Len(t, out, 1)
	assert.Equal(t, set.String(), out[0].FlashcardSetID)
	assert.NoError(t, insights.ValidateSessions(out))
}

func TestToEngineProgressAndPeers(t *testing.T) {
	rows := []*types.FlashcardProgress{
		{FlashcardID: uuid.New(), MasteryLevel: 3, Subject: "math"},
		{FlashcardID: uuid.New(), MasteryLevel: 9},
		{FlashcardID: uuid.New(), MasteryLevel: -1},
		{FlashcardID: uuid.New(), MasteryLevel: math.NaN()},
		{FlashcardID: uuid.New(), MasteryLevel: math.Inf(1)},
	}
	out := toEngineProgress(testutil.Logger(t), rows)
	require.Len(t, out, 1)
	assert.Equal(t, "math", out[0].Subject)

	peers := toEnginePeers([]repos.PeerTotal{{UserID: uuid.New(), TotalSeconds: 60}, {UserID: uuid.New(), TotalSeconds: -1}})
	require.Len(t, peers, 1)
	assert.Equal(t, 60, peers[0].DurationSeconds)
}

func TestDecodePreferencesFallsBack(t *testing.T) {
	log := testutil.Logger(t)
	def := insights.DefaultPreferences()

	assert.Equal(t, def, decodePreferences(log, nil, def))
	assert.Equal(t, def, decodePreferences(log, &types.StudyPreferenceProfile{PrefsJSON: []byte("{")}, def))
	assert.Equal(t, def, decodePreferences(log, &types.StudyPreferenceProfile{PrefsJSON: []byte(`{"studyStyle":"chaos"}`)}, def))

	got := decodePreferences(log, &types.StudyPreferenceProfile{PrefsJSON: []byte(`{"maxDailyStudyTime":60}`)}, def)
	assert.Equal(t, 60, got.MaxDailyStudyTime)
	assert.Equal(t, def.StudyStyle, got.StudyStyle)
}

func TestResolveLocation(t *testing.T) {
	assert.Equal(t, time.UTC, resolveLocation(nil, nil))
	assert.Equal(t, time.UTC, resolveLocation(&types.StudyPreferenceProfile{Timezone: "Nowhere/Land"}, time.UTC))
	loc := resolveLocation(&types.StudyPreferenceProfile{Timezone: "America/New_York"}, time.UTC)
	assert.Equal(t, "America/New_York", loc.String())
}
