package insights

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	trendWindow            = 7
	minSessionsForVelocity = trendWindow + 1
	trendChangeThreshold   = 0.10
	burnoutHighMinutes     = 120.0
	burnoutMediumMinutes   = 75.0
	forecastHorizonDays    = 14
	riskMasteryThreshold   = 50.0
	minIntervalHalfWidth   = 5.0
	intervalWidthFactor    = 30.0
)

var breakFrequencyByRisk = map[RiskLevel]int{
	RiskHigh:   15,
	RiskMedium: 30,
	RiskLow:    45,
}

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// AnalyzeStudyLoad compares the most recent 7 closed sessions with the 7 before them.
// Sessions still active or without a duration are ignored.
func AnalyzeStudyLoad(sessions []StudySession, loc *time.Location) StudyLoad {
	closed := chronological(closedSessions(sessions))
	recentStart := max(0, len(closed)-trendWindow)
	recent := closed[recentStart:]
	prior := closed[max(0, recentStart-trendWindow):recentStart]

	recentAvg := meanMinutes(recent)
	priorAvg := meanMinutes(prior)

	risk := RiskLow
	switch {
	case recentAvg > burnoutHighMinutes:
		risk = RiskHigh
	case recentAvg > burnoutMediumMinutes:
		risk = RiskMedium
	}

	velocity := VelocityStable
	if len(closed) >= minSessionsForVelocity && priorAvg > 0 {
		change := (recentAvg - priorAvg) / priorAvg
		switch {
		case change > trendChangeThreshold:
			velocity = VelocityAccelerating
		case change < -trendChangeThreshold:
			velocity = VelocityDeclining
		}
	}

	return StudyLoad{
		BurnoutRisk:               risk,
		RecommendedBreakFrequency: breakFrequencyByRisk[risk],
		LearningVelocityTrend:     velocity,
		RecentAverageMinutes:      round2(recentAvg),
		PriorAverageMinutes:       round2(priorAvg),
		AverageDailyMinutes:       round2(averageDailyMinutes(closed, loc)),
	}
}

// averageDailyMinutes averages study minutes over the 7 most recent active days.
func averageDailyMinutes(closed []StudySession, loc *time.Location) float64 {
	perDay := map[string]float64{}
	for _, s := range closed {
		m, _ := durationMinutes(s)
		perDay[localTime(s.StartTime, loc).Format("2006-01-02")] += m
	}
	if len(perDay) == 0 {
		return 0
	}
	days := sortedKeys(perDay)
	if len(days) > trendWindow {
		days = days[len(days)-trendWindow:]
	}
	sum := 0.0
	for _, d := range days {
		sum += perDay[d]
	}
	return sum / float64(len(days))
}

func overallTrendFrom(v VelocityTrend) Trend {
	switch v {
	case VelocityAccelerating:
		return TrendImproving
	case VelocityDeclining:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Forecast projects per-subject mastery over a 14 day horizon and flags risk areas.
// Risk and action rules are threshold heuristics; the output contract does not depend on them.
func Forecast(sessions []StudySession, progress []FlashcardProgress) PerformanceForecast {
	load := AnalyzeStudyLoad(sessions, time.UTC)
	out := PerformanceForecast{
		OverallTrend:       overallTrendFrom(load.LearningVelocityTrend),
		HorizonDays:        forecastHorizonDays,
		SubjectForecasts:   []SubjectForecast{},
		RiskAreas:          []RiskArea{},
		RecommendedActions: []RecommendedAction{},
	}

	bySubjectProgress := progressBySubject(progress)
	bySubjectSessions := sessionsBySubject(sessions)
	for _, subject := range sortedKeys(bySubjectProgress) {
		rows := bySubjectProgress[subject]
		current := masteryPercent(rows)
		velocity := accuracyVelocity(bySubjectSessions[subject])
		projected := clamp(current+velocity, 0, 100)
		half := math.Max(minIntervalHalfWidth, intervalWidthFactor/math.Sqrt(float64(max(len(rows), 1))))
		out.SubjectForecasts = append(out.SubjectForecasts, SubjectForecast{
			Subject:          subject,
			CurrentMastery:   round2(current),
			ProjectedMastery: round2(projected),
			Velocity:         round2(velocity),
			ConfidenceInterval: ConfidenceInterval{
				Lower: round2(clamp(projected-half, 0, 100)),
				Upper: round2(clamp(projected+half, 0, 100)),
			},
			SampleSize: len(rows),
		})
		if current < riskMasteryThreshold && velocity < 0 {
			severity := RiskMedium
			if current < beginnerThreshold {
				severity = RiskHigh
			}
			out.RiskAreas = append(out.RiskAreas, RiskArea{
				Subject:  subject,
				Severity: severity,
				Reason:   fmt.Sprintf("Mastery %.0f%% with accuracy falling %.0f points", current, -velocity),
				Mastery:  round2(current),
				Velocity: round2(velocity),
			})
		}
	}
	sort.SliceStable(out.RiskAreas, func(i, j int) bool { return out.RiskAreas[i].Mastery < out.RiskAreas[j].Mastery })

	out.RecommendedActions = recommendedActions(load, out, len(sessions)+len(progress) > 0)
	return out
}

// accuracyVelocity is the change in accuracy, in percentage points, from the older half of
// reviewed sessions to the newer half.
func accuracyVelocity(sessions []StudySession) float64 {
	reviewed := make([]StudySession, 0, len(sessions))
	for _, s := range chronological(sessions) {
		if _, ok := sessionAccuracy(s); ok {
			reviewed = append(reviewed, s)
		}
	}
	if len(reviewed) < 2 {
		return 0
	}
	mid := len(reviewed) / 2
	older, _ := meanAccuracy(reviewed[:mid])
	newer, _ := meanAccuracy(reviewed[mid:])
	return (newer - older) * 100
}

func recommendedActions(load StudyLoad, f PerformanceForecast, hasData bool) []RecommendedAction {
	actions := []RecommendedAction{}
	switch load.BurnoutRisk {
	case RiskHigh:
		actions = append(actions, RecommendedAction{
			Action:    fmt.Sprintf("Shorten sessions and take a break every %d minutes", load.RecommendedBreakFrequency),
			Priority:  PriorityCritical,
			Timeframe: "immediately",
			Category:  "wellbeing",
		})
	case RiskMedium:
		actions = append(actions, RecommendedAction{
			Action:    fmt.Sprintf("Keep sessions under %d minutes with a break every %d minutes", int(burnoutMediumMinutes), load.RecommendedBreakFrequency),
			Priority:  PriorityMedium,
			Timeframe: "this week",
			Category:  "wellbeing",
		})
	}
	for _, r := range f.RiskAreas {
		actions = append(actions, RecommendedAction{
			Action:    fmt.Sprintf("Prioritize spaced review of %s", r.Subject),
			Priority:  PriorityHigh,
			Timeframe: "this week",
			Category:  "content",
			Subject:   r.Subject,
		})
	}
	if f.OverallTrend == TrendDeclining {
		actions = append(actions, RecommendedAction{
			Action:    "Re-establish a consistent daily study routine",
			Priority:  PriorityMedium,
			Timeframe: "next 2 weeks",
			Category:  "schedule",
		})
	}
	if len(actions) == 0 && hasData {
		actions = append(actions, RecommendedAction{
			Action:    "Maintain your current routine and keep reviewing due cards",
			Priority:  PriorityLow,
			Timeframe: "ongoing",
			Category:  "technique",
		})
	}
	sort.SliceStable(actions, func(i, j int) bool { return priorityRank[actions[i].Priority] < priorityRank[actions[j].Priority] })
	return actions
}
