package insights

import (
	"fmt"
	"strings"
	"time"
)

const (
	minSessionsForTiming   = 5
	minSessionsForLength   = 3
	minGapsForBreaks       = 3
	minSessionsForRotation = 5
	maxBreakGap            = 4 * time.Hour
)

type timeOfDay struct {
	label          string
	recommendation string
}

// timeOfDayFor labels an hour: morning 6-12, afternoon 12-18, evening 18-22, late night otherwise.
func timeOfDayFor(hour int) timeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return timeOfDay{"morning", "Schedule demanding new material in the morning while focus is high."}
	case hour >= 12 && hour < 18:
		return timeOfDay{"afternoon", "Use afternoon sessions for practice quizzes and active recall."}
	case hour >= 18 && hour < 22:
		return timeOfDay{"evening", "Evening sessions suit review; keep new material light before sleep."}
	default:
		return timeOfDay{"late night", "Late-night studying hurts retention; try moving sessions earlier."}
	}
}

func impactFromEffectiveness(eff float64) Impact {
	switch {
	case eff >= 0.7:
		return ImpactPositive
	case eff >= 0.5:
		return ImpactNeutral
	default:
		return ImpactNegative
	}
}

// AnalyzePatterns detects behavioral patterns. Types without enough data are omitted.
func AnalyzePatterns(sessions []StudySession, loc *time.Location) []BehavioralPattern {
	out := []BehavioralPattern{}
	if p, ok := timingPattern(sessions, loc); ok {
		out = append(out, p)
	}
	if p, ok := lengthPattern(sessions); ok {
		out = append(out, p)
	}
	if p, ok := breakPattern(sessions, loc); ok {
		out = append(out, p)
	}
	if p, ok := rotationPattern(sessions); ok {
		out = append(out, p)
	}
	return out
}

func timingPattern(sessions []StudySession, loc *time.Location) (BehavioralPattern, bool) {
	if len(sessions) < minSessionsForTiming {
		return BehavioralPattern{}, false
	}
	var buckets [24][]StudySession
	for _, s := range sessions {
		h := localTime(s.StartTime, loc).Hour()
		buckets[h] = append(buckets[h], s)
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if len(buckets[h]) > len(buckets[peak]) {
			peak = h
		}
	}
	eff, ok := meanAccuracy(buckets[peak])
	if !ok {
		eff = 0.5
	}
	tod := timeOfDayFor(peak)
	hour := peak
	return BehavioralPattern{
		PatternType:    PatternStudyTiming,
		Pattern:        fmt.Sprintf("Most sessions start around %s (%s)", clockString(peak, 0), tod.label),
		Frequency:      round2(float64(len(buckets[peak])) / float64(len(sessions))),
		Effectiveness:  round2(eff),
		Impact:         impactFromEffectiveness(eff),
		Recommendation: tod.recommendation,
		PeakHour:       &hour,
	}, true
}

func lengthClass(minutes float64) string {
	switch {
	case minutes < 30:
		return "short"
	case minutes <= 60:
		return "medium"
	default:
		return "long"
	}
}

// lengthEffectiveness peaks at 0.9 for 25-50 minutes and decays outward.
func lengthEffectiveness(minutes float64) float64 {
	switch {
	case minutes < 25:
		return clamp(0.9-(25-minutes)*0.02, 0.4, 0.9)
	case minutes <= 50:
		return 0.9
	default:
		return clamp(0.9-(minutes-50)*0.01, 0.3, 0.9)
	}
}

func lengthPattern(sessions []StudySession) (BehavioralPattern, bool) {
	closed := closedSessions(sessions)
	if len(closed) < minSessionsForLength {
		return BehavioralPattern{}, false
	}
	avg := meanMinutes(closed)
	class := lengthClass(avg)
	same := 0
	for _, s := range closed {
		m, _ := durationMinutes(s)
		if lengthClass(m) == class {
			same++
		}
	}
	eff := lengthEffectiveness(avg)
	impact := ImpactNeutral
	switch {
	case avg >= 20 && avg <= 60:
		impact = ImpactPositive
	case eff < 0.5:
		impact = ImpactNegative
	}
	rec := "Your session length is in the productive range; keep it."
	switch {
	case avg < 20:
		rec = "Sessions are very short; aim for 25-45 focused minutes."
	case avg > 60:
		rec = "Long sessions lose focus; split them into 45-minute blocks with breaks."
	}
	avgRounded := round2(avg)
	return BehavioralPattern{
		PatternType:    PatternSessionLength,
		Pattern:        fmt.Sprintf("Sessions are typically %s (%.0f minutes on average)", class, avg),
		Frequency:      round2(float64(same) / float64(len(closed))),
		Effectiveness:  round2(eff),
		Impact:         impact,
		Recommendation: rec,
		AverageMinutes: &avgRounded,
	}, true
}

func breakPattern(sessions []StudySession, loc *time.Location) (BehavioralPattern, bool) {
	closed := chronological(closedSessions(sessions))
	if len(closed) < 2 {
		return BehavioralPattern{}, false
	}
	gaps := []float64{}
	for i := 1; i < len(closed); i++ {
		prev, next := closed[i-1], closed[i]
		ps, ns := localTime(prev.StartTime, loc), localTime(next.StartTime, loc)
		if ps.YearDay() != ns.YearDay() || ps.Year() != ns.Year() {
			continue
		}
		end := prev.StartTime.Add(time.Duration(*prev.DurationSeconds) * time.Second)
		gap := next.StartTime.Sub(end)
		if gap < 0 || gap > maxBreakGap {
			continue
		}
		gaps = append(gaps, gap.Minutes())
	}
	if len(gaps) < minGapsForBreaks {
		return BehavioralPattern{}, false
	}
	sum := 0.0
	for _, g := range gaps {
		sum += g
	}
	avg := sum / float64(len(gaps))
	p := BehavioralPattern{
		PatternType: PatternBreakFrequency,
		Frequency:   round2(float64(len(gaps)) / float64(len(closed)-1)),
	}
	avgRounded := round2(avg)
	p.AverageMinutes = &avgRounded
	switch {
	case avg < 5:
		p.Pattern = "Sessions run back-to-back with almost no break"
		p.Effectiveness = 0.4
		p.Impact = ImpactNegative
		p.Recommendation = "Take at least a 5-minute break between sessions."
	case avg <= 30:
		p.Pattern = fmt.Sprintf("Regular short breaks of about %.0f minutes", avg)
		p.Effectiveness = 0.8
		p.Impact = ImpactPositive
		p.Recommendation = "Your break rhythm works; keep breaks screen-free."
	default:
		p.Pattern = fmt.Sprintf("Long breaks of about %.0f minutes between sessions", avg)
		p.Effectiveness = 0.6
		p.Impact = ImpactNeutral
		p.Recommendation = "Shorter breaks help keep material warm between sessions."
	}
	return p, true
}

func rotationPattern(sessions []StudySession) (BehavioralPattern, bool) {
	withSubject := make([]StudySession, 0, len(sessions))
	distinct := map[string]struct{}{}
	for _, s := range sessions {
		subj := strings.TrimSpace(s.Subject)
		if subj == "" {
			continue
		}
		withSubject = append(withSubject, s)
		distinct[subj] = struct{}{}
	}
	if len(withSubject) < minSessionsForRotation || len(distinct) < 2 {
		return BehavioralPattern{}, false
	}
	ordered := chronological(withSubject)
	switches := 0
	for i := 1; i < len(ordered); i++ {
		if strings.TrimSpace(ordered[i].Subject) != strings.TrimSpace(ordered[i-1].Subject) {
			switches++
		}
	}
	ratio := float64(switches) / float64(len(ordered)-1)
	eff, ok := meanAccuracy(ordered)
	if !ok {
		eff = 0.5
	}
	p := BehavioralPattern{
		PatternType:   PatternSubjectRotation,
		Frequency:     round2(ratio),
		Effectiveness: round2(eff),
	}
	if ratio >= 0.3 {
		p.Pattern = fmt.Sprintf("Interleaves %d subjects across sessions", len(distinct))
		p.Impact = ImpactPositive
		p.Recommendation = "Interleaving subjects strengthens retention; keep mixing."
	} else {
		p.Pattern = fmt.Sprintf("Studies %d subjects in long single-subject blocks", len(distinct))
		p.Impact = ImpactNeutral
		p.Recommendation = "Try alternating subjects between sessions to improve recall."
	}
	return p, true
}
