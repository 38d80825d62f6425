package insights

import (
	"fmt"
	"sort"
	"time"
)

const (
	maxSuggestions       = 4
	weakSubjectThreshold = 50.0
	lowAccuracyThreshold = 0.7
	insufficientDataMsg  = "Keep studying to unlock personalized insights. Complete a few sessions and review some flashcards to get started."
	recentAccuracyWindow = 10
)

// Input is one user's snapshot. Location controls hour-of-day bucketing; nil means UTC.
// PeerWindowStart bounds the user's own total to the window the peer rows cover; nil counts
// every session.
type Input struct {
	Sessions        []StudySession      `json:"sessions"`
	Progress        []FlashcardProgress `json:"progress"`
	Preferences     *StudyPreferences   `json:"preferences,omitempty"`
	Peers           []PeerStudyTime     `json:"peers,omitempty"`
	PeerWindowStart *time.Time          `json:"peerWindowStart,omitempty"`
	Location        *time.Location      `json:"-"`
}

// ComputeInsights validates the snapshot and composes every analysis into one Insights value.
// It performs no I/O and reads no clock, so equal inputs produce equal outputs.
func ComputeInsights(in Input) (*Insights, error) {
	prefs := DefaultPreferences()
	if in.Preferences != nil {
		prefs = in.Preferences.Normalize()
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSessions(in.Sessions); err != nil {
		return nil, err
	}
	if err := ValidateProgress(in.Progress); err != nil {
		return nil, err
	}
	if err := ValidatePeers(in.Peers); err != nil {
		return nil, err
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	mastery := subjectMastery(in.Progress)

	out := &Insights{
		DataStatus:    DataStatusReady,
		SessionCount:  len(in.Sessions),
		LearningPaths: GenerateLearningPaths(in.Sessions, in.Progress),
		Schedule:      OptimizeSchedule(in.Sessions, in.Progress, prefs, loc),
		Forecast:      Forecast(in.Sessions, in.Progress),
		Patterns:      AnalyzePatterns(in.Sessions, loc),
		StudyLoad:     AnalyzeStudyLoad(in.Sessions, loc),
		Comparative:   ComparePeers(totalStudySeconds(in.Sessions, in.PeerWindowStart), in.Peers, mastery),
		Preferences:   prefs,
	}
	if len(in.Sessions) == 0 && len(in.Progress) == 0 {
		out.DataStatus = DataStatusInsufficient
		out.Message = insufficientDataMsg
	}
	out.Suggestions = deriveSuggestions(in, prefs, mastery, out)
	return out, nil
}

func deriveSuggestions(in Input, prefs StudyPreferences, mastery map[string]float64, ins *Insights) []OptimizationSuggestion {
	out := []OptimizationSuggestion{}
	if ins.DataStatus == DataStatusInsufficient {
		return out
	}

	load := ins.StudyLoad
	overDaily := prefs.MaxDailyStudyTime > 0 && load.AverageDailyMinutes > float64(prefs.MaxDailyStudyTime)
	if load.BurnoutRisk != RiskLow || overDaily {
		desc := fmt.Sprintf("Your recent sessions average %.0f minutes.", load.RecentAverageMinutes)
		if overDaily {
			desc = fmt.Sprintf("You study %.0f minutes a day, above your %d minute limit.", load.AverageDailyMinutes, prefs.MaxDailyStudyTime)
		}
		out = append(out, OptimizationSuggestion{
			ID:             "reduce-study-load",
			Category:       CategorySchedule,
			Priority:       1,
			Title:          "Reduce study load",
			Description:    desc,
			ExpectedImpact: "Lower fatigue and better retention",
			ActionItems: []string{
				fmt.Sprintf("Keep sessions near %d minutes", prefs.PreferredStudyDuration),
				fmt.Sprintf("Take a break every %d minutes", load.RecommendedBreakFrequency),
			},
		})
	}

	if weakest, m, ok := weakestSubject(mastery); ok && m < weakSubjectThreshold {
		out = append(out, OptimizationSuggestion{
			ID:             "focus-weak-subject",
			Category:       CategoryContent,
			Priority:       2,
			Title:          fmt.Sprintf("Focus on %s", weakest),
			Description:    fmt.Sprintf("%s mastery is %.0f%%, your lowest subject.", weakest, m),
			ExpectedImpact: "Faster overall mastery gains",
			ActionItems: []string{
				fmt.Sprintf("Start your high-focus slot with %s", weakest),
				"Review missed cards within 24 hours",
			},
		})
	}

	closed := closedSessions(in.Sessions)
	if len(closed) > 0 && (load.AverageDailyMinutes < float64(prefs.PreferredStudyDuration) || load.LearningVelocityTrend == VelocityDeclining) {
		out = append(out, OptimizationSuggestion{
			ID:             "steady-pacing",
			Category:       CategorySchedule,
			Priority:       3,
			Title:          "Build a steady daily rhythm",
			Description:    fmt.Sprintf("You average %.0f study minutes per active day against a %d minute target.", load.AverageDailyMinutes, prefs.PreferredStudyDuration),
			ExpectedImpact: "More consistent progress toward your goals",
			ActionItems: []string{
				"Study at the same time each day",
				"Follow the weekly pattern in your schedule",
			},
		})
	}

	if latePeak(ins.Patterns) {
		out = append(out, OptimizationSuggestion{
			ID:             "earlier-sessions",
			Category:       CategoryEnvironment,
			Priority:       4,
			Title:          "Move sessions earlier",
			Description:    "Most of your sessions start late at night, when recall is weakest.",
			ExpectedImpact: "Better focus and sleep-driven consolidation",
			ActionItems: []string{
				"Shift your main session before 22:00",
				"Study in a quiet, well-lit place",
			},
		})
	} else if acc, ok := meanAccuracy(recentSessions(in.Sessions, recentAccuracyWindow)); ok && acc < lowAccuracyThreshold {
		out = append(out, OptimizationSuggestion{
			ID:             "active-recall",
			Category:       CategoryTechnique,
			Priority:       4,
			Title:          "Use active recall",
			Description:    fmt.Sprintf("Recent accuracy is %.0f%%.", acc*100),
			ExpectedImpact: "Stronger long-term memory",
			ActionItems: []string{
				"Answer before flipping each card",
				"Space reviews of missed cards over several days",
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func weakestSubject(mastery map[string]float64) (string, float64, bool) {
	keys := sortedKeys(mastery)
	if len(keys) == 0 {
		return "", 0, false
	}
	best := keys[0]
	for _, k := range keys[1:] {
		if mastery[k] < mastery[best] {
			best = k
		}
	}
	return best, mastery[best], true
}

func latePeak(patterns []BehavioralPattern) bool {
	for _, p := range patterns {
		if p.PatternType == PatternStudyTiming && p.PeakHour != nil {
			return timeOfDayFor(*p.PeakHour).label == "late night"
		}
	}
	return false
}

func recentSessions(sessions []StudySession, n int) []StudySession {
	ordered := chronological(sessions)
	if len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}
