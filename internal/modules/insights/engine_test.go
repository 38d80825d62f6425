package insights

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yungbote/neurobridge-insights/internal/pkg/errors"
)

func TestComputeInsightsColdStart(t *testing.T) {
	out, err := ComputeInsights(Input{})
	require.NoError(t, err)

	assert.Equal(t, DataStatusInsufficient, out.DataStatus)
	assert.NotEmpty(t, out.Message)
	assert.Empty(t, out.LearningPaths)
	assert.Empty(t, out.Patterns)
	assert.Empty(t, out.Suggestions)
	assert.True(t, out.Schedule.UsesDefaults)
	assert.Len(t, out.Schedule.OptimalTimeSlots, 3)
	assert.Equal(t, TrendStable, out.Forecast.OverallTrend)
	assert.InDelta(t, 50, out.Comparative.PerformancePercentile, 1e-9)
	assert.Equal(t, DefaultPreferences(), out.Preferences)
}

func TestComputeInsightsIsPure(t *testing.T) {
	in := Input{
		Sessions: append(dailyAt(10, 9, 30, 10, 8, "math"), dailyAt(4, 20, 50, 10, 5, "history")...),
		Progress: append(progressRows("math", 3, 4), progressRows("history", 1)...),
		Peers:    []PeerStudyTime{{UserID: "p1", DurationSeconds: 7200}, {UserID: "p2", DurationSeconds: 900}},
	}
	before, err := json.Marshal(in)
	require.NoError(t, err)

	first, err := ComputeInsights(in)
	require.NoError(t, err)
	second, err := ComputeInsights(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "input must not be mutated")
	assert.Equal(t, DataStatusReady, first.DataStatus)
}

func TestComputeInsightsRatioSafety(t *testing.T) {
	in := Input{
		Sessions: []StudySession{
			session(testBase, 30, 0, 0, ""),
			session(testBase.Add(time.Hour), 0, 0, 0, ""),
			{StartTime: testBase.Add(2 * time.Hour), IsActive: true},
		},
		Progress: []FlashcardProgress{{MasteryLevel: 0}},
	}
	out, err := ComputeInsights(in)
	require.NoError(t, err)

	// encoding/json rejects NaN and Inf, so a clean marshal proves every ratio is finite.
	_, err = json.Marshal(out)
	require.NoError(t, err)
}

func TestComputeInsightsRejectsInvalidInput(t *testing.T) {
	neg := -5
	cases := []struct {
		name string
		in   Input
	}{
		{"negative duration", Input{Sessions: []StudySession{{StartTime: testBase, DurationSeconds: &neg}}}},
		{"correct exceeds reviewed", Input{Sessions: []StudySession{session(testBase, 10, 3, 4, "")}}},
		{"negative count", Input{Sessions: []StudySession{session(testBase, 10, -1, 0, "")}}},
		{"missing start time", Input{Sessions: []StudySession{{DurationSeconds: secs(5)}}}},
		{"mastery above scale", Input{Progress: []FlashcardProgress{{MasteryLevel: 6}}}},
		{"mastery NaN", Input{Progress: []FlashcardProgress{{Subject: "math", MasteryLevel: math.NaN()}}}},
		{"mastery +Inf", Input{Progress: []FlashcardProgress{{Subject: "math", MasteryLevel: math.Inf(1)}}}},
		{"mastery -Inf", Input{Progress: []FlashcardProgress{{Subject: "math", MasteryLevel: math.Inf(-1)}}}},
		{"negative peer duration", Input{Peers: []PeerStudyTime{{UserID: "x", DurationSeconds: -1}}}},
		{"bad break frequency", Input{Preferences: &StudyPreferences{BreakFrequency: "sometimes"}}},
		{"negative minutes", Input{Preferences: &StudyPreferences{PreferredStudyDuration: -10}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ComputeInsights(tc.in)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestComputeInsightsPeerWindowBoundsUserTotal(t *testing.T) {
	windowStart := testBase.AddDate(0, 0, -30)
	in := Input{
		Sessions: []StudySession{
			session(testBase.AddDate(0, 0, -60), 60, 10, 8, "math"),
			session(testBase.AddDate(0, 0, -1), 10, 5, 4, "math"),
		},
		Peers: []PeerStudyTime{{UserID: "p1", DurationSeconds: 30 * 60}},
	}

	unbounded, err := ComputeInsights(in)
	require.NoError(t, err)
	assert.Equal(t, float64(100), unbounded.Comparative.PerformancePercentile)

	in.PeerWindowStart = &windowStart
	out, err := ComputeInsights(in)
	require.NoError(t, err)
	assert.Equal(t, float64(0), out.Comparative.PerformancePercentile)
	assert.Equal(t, StreakBelowAverage, out.Comparative.StreakComparison)
	assert.InDelta(t, 0.17, out.Comparative.UserStudyTime, 1e-9)
	assert.InDelta(t, 0.5, out.Comparative.AveragePeerStudyTime, 1e-9)
	assert.Equal(t, 2, out.SessionCount)
}

func TestComputeInsightsNormalizesPreferences(t *testing.T) {
	out, err := ComputeInsights(Input{Preferences: &StudyPreferences{BreakFrequency: " Frequent "}})
	require.NoError(t, err)
	assert.Equal(t, "frequent", out.Preferences.BreakFrequency)
	assert.Equal(t, DefaultPreferredStudyDuration, out.Preferences.PreferredStudyDuration)
	assert.Len(t, out.Schedule.BreakRecommendations, 2)
}

func TestComputeInsightsSuggestions(t *testing.T) {
	sessions := dailyAt(7, 23, 130, 10, 5, "physics")
	in := Input{
		Sessions: sessions,
		Progress: append(progressRows("physics", 1), progressRows("math", 4)...),
	}
	out, err := ComputeInsights(in)
	require.NoError(t, err)

	require.NotEmpty(t, out.Suggestions)
	assert.LessOrEqual(t, len(out.Suggestions), 4)
	assert.Equal(t, "reduce-study-load", out.Suggestions[0].ID)
	for i := 1; i < len(out.Suggestions); i++ {
		assert.LessOrEqual(t, out.Suggestions[i-1].Priority, out.Suggestions[i].Priority)
	}

	ids := map[string]bool{}
	for _, s := range out.Suggestions {
		ids[s.ID] = true
	}
	assert.True(t, ids["focus-weak-subject"])
	assert.True(t, ids["earlier-sessions"], "late-night peak gets an environment tip")
	assert.Equal(t, RiskHigh, out.StudyLoad.BurnoutRisk)
}

func TestComputeInsightsNilLocationIsUTC(t *testing.T) {
	in := Input{Sessions: dailyAt(6, 9, 30, 10, 8, "")}
	utc, err := ComputeInsights(in)
	require.NoError(t, err)
	in.Location = time.UTC
	explicit, err := ComputeInsights(in)
	require.NoError(t, err)
	assert.Equal(t, utc, explicit)
}
