package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePatternsBelowThreshold(t *testing.T) {
	patterns := AnalyzePatterns(dailyAt(2, 9, 30, 10, 8, ""), time.UTC)
	assert.Empty(t, patterns)

	patterns = AnalyzePatterns(dailyAt(4, 9, 30, 10, 8, ""), time.UTC)
	_, ok := findPattern(patterns, PatternStudyTiming)
	assert.False(t, ok, "timing needs at least 5 sessions")
	_, ok = findPattern(patterns, PatternSessionLength)
	assert.True(t, ok)
}

func TestAnalyzePatternsDominantHour(t *testing.T) {
	patterns := AnalyzePatterns(dailyAt(10, 9, 30, 10, 8, ""), time.UTC)

	timing, ok := findPattern(patterns, PatternStudyTiming)
	require.True(t, ok)
	require.NotNil(t, timing.PeakHour)
	assert.Equal(t, 9, *timing.PeakHour)
	assert.InDelta(t, 0.8, timing.Effectiveness, 1e-9)
	assert.Equal(t, ImpactPositive, timing.Impact)
	assert.InDelta(t, 1.0, timing.Frequency, 1e-9)
	assert.Contains(t, timing.Pattern, "morning")

	length, ok := findPattern(patterns, PatternSessionLength)
	require.True(t, ok)
	assert.Equal(t, ImpactPositive, length.Impact)
	assert.InDelta(t, 0.9, length.Effectiveness, 1e-9)

	seen := map[PatternType]int{}
	for _, p := range patterns {
		seen[p.PatternType]++
	}
	for pt, n := range seen {
		assert.Equal(t, 1, n, "duplicate pattern %s", pt)
	}
}

func TestAnalyzePatternsPeakTieTakesEarliestHour(t *testing.T) {
	sessions := append(dailyAt(3, 14, 30, 10, 5, ""), dailyAt(3, 8, 30, 10, 5, "")...)
	timing, ok := findPattern(AnalyzePatterns(sessions, time.UTC), PatternStudyTiming)
	require.True(t, ok)
	assert.Equal(t, 8, *timing.PeakHour)
	assert.Equal(t, ImpactNeutral, timing.Impact)
}

func TestAnalyzePatternsDefaultEffectivenessWithoutReviews(t *testing.T) {
	timing, ok := findPattern(AnalyzePatterns(dailyAt(5, 23, 30, 0, 0, ""), time.UTC), PatternStudyTiming)
	require.True(t, ok)
	assert.InDelta(t, 0.5, timing.Effectiveness, 1e-9)
	assert.Contains(t, timing.Pattern, "late night")
}

func TestAnalyzePatternsUsesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	timing, ok := findPattern(AnalyzePatterns(dailyAt(5, 14, 30, 10, 9, ""), est), PatternStudyTiming)
	require.True(t, ok)
	assert.Equal(t, 9, *timing.PeakHour)
}

func TestLengthEffectiveness(t *testing.T) {
	cases := []struct {
		minutes float64
		want    float64
	}{
		{0, 0.4},
		{15, 0.7},
		{25, 0.9},
		{40, 0.9},
		{50, 0.9},
		{80, 0.6},
		{100, 0.4},
		{300, 0.3},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, lengthEffectiveness(tc.minutes), 1e-9, "minutes=%v", tc.minutes)
	}
}

func TestAnalyzePatternsLongSessionsAreNegative(t *testing.T) {
	length, ok := findPattern(AnalyzePatterns(dailyAt(3, 10, 150, 10, 9, ""), time.UTC), PatternSessionLength)
	require.True(t, ok)
	assert.Equal(t, ImpactNegative, length.Impact)
	require.NotNil(t, length.AverageMinutes)
	assert.InDelta(t, 150, *length.AverageMinutes, 1e-9)
}

func TestAnalyzePatternsActiveSessionsIgnoredForLength(t *testing.T) {
	sessions := dailyAt(3, 10, 30, 10, 9, "")
	sessions = append(sessions, StudySession{StartTime: testBase.AddDate(0, 0, 5), DurationSeconds: secs(600), IsActive: true})
	length, ok := findPattern(AnalyzePatterns(sessions, time.UTC), PatternSessionLength)
	require.True(t, ok)
	assert.InDelta(t, 30, *length.AverageMinutes, 1e-9)
}

func TestAnalyzePatternsBreakFrequency(t *testing.T) {
	day := testBase.Add(9 * time.Hour)
	sessions := []StudySession{
		session(day, 30, 10, 8, ""),
		session(day.Add(40*time.Minute), 30, 10, 8, ""),
		session(day.Add(80*time.Minute), 30, 10, 8, ""),
		session(day.Add(120*time.Minute), 30, 10, 8, ""),
	}
	p, ok := findPattern(AnalyzePatterns(sessions, time.UTC), PatternBreakFrequency)
	require.True(t, ok)
	assert.Equal(t, ImpactPositive, p.Impact)
	assert.InDelta(t, 10, *p.AverageMinutes, 1e-9)
}

func TestAnalyzePatternsSubjectRotation(t *testing.T) {
	var sessions []StudySession
	for i := 0; i < 6; i++ {
		subject := "math"
		if i%2 == 1 {
			subject = "biology"
		}
		sessions = append(sessions, session(testBase.AddDate(0, 0, i), 30, 10, 7, subject))
	}
	p, ok := findPattern(AnalyzePatterns(sessions, time.UTC), PatternSubjectRotation)
	require.True(t, ok)
	assert.Equal(t, ImpactPositive, p.Impact)
	assert.InDelta(t, 1.0, p.Frequency, 1e-9)

	_, ok = findPattern(AnalyzePatterns(dailyAt(6, 9, 30, 10, 7, "math"), time.UTC), PatternSubjectRotation)
	assert.False(t, ok, "single subject never rotates")
}
