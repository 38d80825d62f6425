package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePeersNoPeers(t *testing.T) {
	m := ComparePeers(3600, nil, nil)
	assert.InDelta(t, 50, m.PerformancePercentile, 1e-9)
	assert.Zero(t, m.AveragePeerStudyTime)
	assert.Zero(t, m.PeerCount)
	assert.InDelta(t, 1, m.UserStudyTime, 1e-9)
	assert.Equal(t, StreakAverage, m.StreakComparison)
	assert.NotNil(t, m.SubjectRankings)
}

func TestComparePeersPercentile(t *testing.T) {
	peers := []PeerStudyTime{
		{UserID: "a", DurationSeconds: 100},
		{UserID: "b", DurationSeconds: 200},
		{UserID: "c", DurationSeconds: 300},
	}
	cases := []struct {
		name   string
		user   int
		want   float64
		streak StreakComparison
	}{
		{"below everyone", 0, 0, StreakBelowAverage},
		{"tie counts as at or below", 200, 66.67, StreakAverage},
		{"above everyone", 10_000, 100, StreakAboveAverage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := ComparePeers(tc.user, peers, nil)
			assert.InDelta(t, tc.want, m.PerformancePercentile, 1e-9)
			assert.GreaterOrEqual(t, m.PerformancePercentile, 0.0)
			assert.LessOrEqual(t, m.PerformancePercentile, 100.0)
			assert.Equal(t, tc.streak, m.StreakComparison)
		})
	}
}

func TestComparePeersSumsRowsPerPeer(t *testing.T) {
	peers := []PeerStudyTime{
		{UserID: "a", DurationSeconds: 3600},
		{UserID: "a", DurationSeconds: 3600},
		{UserID: "b", DurationSeconds: 1800},
	}
	m := ComparePeers(3000, peers, nil)
	assert.Equal(t, 2, m.PeerCount)
	assert.InDelta(t, 50, m.PerformancePercentile, 1e-9)
	assert.InDelta(t, 1.25, m.AveragePeerStudyTime, 1e-9)
}

func TestComparePeersSubjectRankingsClamped(t *testing.T) {
	m := ComparePeers(0, nil, map[string]float64{"math": 0, "art": 100, "history": 50})
	require.Len(t, m.SubjectRankings, 3)
	assert.Equal(t, "art", m.SubjectRankings[0].Subject)
	assert.InDelta(t, 95, m.SubjectRankings[0].Percentile, 1e-9)
	assert.InDelta(t, 50, m.SubjectRankings[1].Percentile, 1e-9)
	assert.InDelta(t, 5, m.SubjectRankings[2].Percentile, 1e-9)
	assert.InDelta(t, 0, m.SubjectRankings[2].Mastery, 1e-9)
}
