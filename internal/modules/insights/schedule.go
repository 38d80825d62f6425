package insights

import (
	"math"
	"sort"
	"time"
)

const (
	minSessionsForSlots  = 5
	minSessionsPerHour   = 2
	maxOptimalSlots      = 3
	maxEfficiencyScore   = 0.95
	efficiencyMultiplier = 1.2
	weekendDefaultHour   = 10
	weekdayDefaultHour   = 19
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// cognitiveLoadFor: 9-11 high, 14-16 medium, else low.
func cognitiveLoadFor(hour int) CognitiveLoad {
	switch {
	case hour >= 9 && hour <= 11:
		return LoadHigh
	case hour >= 14 && hour <= 16:
		return LoadMedium
	default:
		return LoadLow
	}
}

// intensityFor: 9-11 intensive, 14-17 moderate, else light.
func intensityFor(hour int) Intensity {
	switch {
	case hour >= 9 && hour <= 11:
		return IntensityIntensive
	case hour >= 14 && hour <= 17:
		return IntensityModerate
	default:
		return IntensityLight
	}
}

var breakTable = map[string][]BreakRecommendation{
	"frequent": {
		{AfterMinutes: 25, DurationMinutes: 5, Activity: "Stand up and stretch"},
		{AfterMinutes: 50, DurationMinutes: 15, Activity: "Walk away from the screen"},
	},
	"moderate": {
		{AfterMinutes: 45, DurationMinutes: 10, Activity: "Hydrate and rest your eyes"},
		{AfterMinutes: 90, DurationMinutes: 20, Activity: "Take a proper break with movement"},
	},
	"minimal": {
		{AfterMinutes: 60, DurationMinutes: 10, Activity: "Short reset before continuing"},
	},
}

// BreakRecommendations is a fixed lookup by break frequency, not derived from data.
func BreakRecommendations(breakFrequency string) []BreakRecommendation {
	recs, ok := breakTable[breakFrequency]
	if !ok {
		recs = breakTable["moderate"]
	}
	out := make([]BreakRecommendation, len(recs))
	copy(out, recs)
	return out
}

// OptimizeSchedule computes time slots, a weekly pattern and break recommendations.
func OptimizeSchedule(sessions []StudySession, progress []FlashcardProgress, prefs StudyPreferences, loc *time.Location) StudySchedule {
	prefs = prefs.Normalize()
	ranked := subjectsByMastery(progress)
	slots, usesDefaults := optimalTimeSlots(sessions, ranked, prefs, loc)
	return StudySchedule{
		OptimalTimeSlots:     slots,
		WeeklyPattern:        weeklyPattern(sessions, prefs, loc),
		BreakRecommendations: BreakRecommendations(prefs.BreakFrequency),
		UsesDefaults:         usesDefaults,
	}
}

func defaultTimeSlots(ranked []string, prefs StudyPreferences) []OptimalTimeSlot {
	defaults := []struct {
		hour int
		eff  float64
	}{
		{9, 0.8},
		{14, 0.7},
		{19, 0.6},
	}
	out := make([]OptimalTimeSlot, 0, len(defaults))
	for _, d := range defaults {
		load := cognitiveLoadFor(d.hour)
		out = append(out, OptimalTimeSlot{
			StartTime:           clockString(d.hour, 0),
			EndTime:             clockString(d.hour, prefs.PreferredStudyDuration),
			EfficiencyScore:     d.eff,
			RecommendedSubjects: subjectsForLoad(ranked, load),
			CognitiveLoad:       load,
		})
	}
	return out
}

func optimalTimeSlots(sessions []StudySession, ranked []string, prefs StudyPreferences, loc *time.Location) ([]OptimalTimeSlot, bool) {
	if len(sessions) < minSessionsForSlots {
		return defaultTimeSlots(ranked, prefs), true
	}
	var buckets [24][]StudySession
	for _, s := range sessions {
		h := localTime(s.StartTime, loc).Hour()
		buckets[h] = append(buckets[h], s)
	}
	type hourStat struct {
		hour     int
		accuracy float64
		n        int
	}
	stats := []hourStat{}
	for h := 0; h < 24; h++ {
		if len(buckets[h]) < minSessionsPerHour {
			continue
		}
		acc, _ := meanAccuracy(buckets[h])
		stats = append(stats, hourStat{hour: h, accuracy: acc, n: len(buckets[h])})
	}
	if len(stats) == 0 {
		return defaultTimeSlots(ranked, prefs), true
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].accuracy != stats[j].accuracy {
			return stats[i].accuracy > stats[j].accuracy
		}
		return stats[i].hour < stats[j].hour
	})
	if len(stats) > maxOptimalSlots {
		stats = stats[:maxOptimalSlots]
	}
	out := make([]OptimalTimeSlot, 0, len(stats))
	for _, st := range stats {
		load := cognitiveLoadFor(st.hour)
		out = append(out, OptimalTimeSlot{
			StartTime:           clockString(st.hour, 0),
			EndTime:             clockString(st.hour, prefs.PreferredStudyDuration),
			EfficiencyScore:     round2(math.Min(maxEfficiencyScore, st.accuracy*efficiencyMultiplier)),
			RecommendedSubjects: subjectsForLoad(ranked, load),
			CognitiveLoad:       load,
			SampleSize:          st.n,
		})
	}
	return out, false
}

// subjectsByMastery orders subjects weakest first; ties break by name.
func subjectsByMastery(progress []FlashcardProgress) []string {
	mastery := subjectMastery(progress)
	subjects := sortedKeys(mastery)
	sort.SliceStable(subjects, func(i, j int) bool { return mastery[subjects[i]] < mastery[subjects[j]] })
	return subjects
}

// subjectsForLoad matches demanding slots with weak subjects and light slots with strong ones.
func subjectsForLoad(ranked []string, load CognitiveLoad) []string {
	n := len(ranked)
	if n == 0 {
		return []string{}
	}
	switch load {
	case LoadHigh:
		return append([]string{}, ranked[:min(2, n)]...)
	case LoadMedium:
		return []string{ranked[n/2]}
	default:
		return append([]string{}, ranked[max(0, n-2):]...)
	}
}

func weeklyPattern(sessions []StudySession, prefs StudyPreferences, loc *time.Location) []WeeklySlot {
	var hourSum [7]int
	var count [7]int
	for _, s := range sessions {
		t := localTime(s.StartTime, loc)
		d := int(t.Weekday())
		hourSum[d] += t.Hour()
		count[d]++
	}
	duration := prefs.PreferredStudyDuration
	if prefs.MaxDailyStudyTime > 0 && duration > prefs.MaxDailyStudyTime {
		duration = prefs.MaxDailyStudyTime
	}
	out := make([]WeeklySlot, 0, 7)
	for d := 0; d < 7; d++ {
		hour := weekdayDefaultHour
		if d == 0 || d == 6 {
			hour = weekendDefaultHour
		}
		fromHistory := false
		if count[d] > 0 {
			hour = int(math.Round(float64(hourSum[d]) / float64(count[d])))
			fromHistory = true
		}
		out = append(out, WeeklySlot{
			DayOfWeek:       d,
			Day:             dayNames[d],
			StartTime:       clockString(hour, 0),
			DurationMinutes: duration,
			Intensity:       intensityFor(hour),
			FromHistory:     fromHistory,
		})
	}
	return out
}
