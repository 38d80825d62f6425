package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// sessionAccuracy returns correct/reviewed and whether the session reviewed anything.
// Sessions without reviewed cards contribute 0 and are skipped by callers averaging accuracy.
func sessionAccuracy(s StudySession) (float64, bool) {
	if s.CardsReviewed <= 0 {
		return 0, false
	}
	return float64(s.CardsCorrect) / float64(s.CardsReviewed), true
}

// meanAccuracy averages accuracy over reviewed sessions; ok is false when none reviewed cards.
func meanAccuracy(sessions []StudySession) (float64, bool) {
	sum := 0.0
	n := 0
	for _, s := range sessions {
		if acc, ok := sessionAccuracy(s); ok {
			sum += acc
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// durationMinutes is usable only for closed sessions with a recorded duration.
func durationMinutes(s StudySession) (float64, bool) {
	if s.IsActive || s.DurationSeconds == nil || *s.DurationSeconds < 0 {
		return 0, false
	}
	return float64(*s.DurationSeconds) / 60.0, true
}

func closedSessions(sessions []StudySession) []StudySession {
	out := make([]StudySession, 0, len(sessions))
	for _, s := range sessions {
		if _, ok := durationMinutes(s); ok {
			out = append(out, s)
		}
	}
	return out
}

func meanMinutes(sessions []StudySession) float64 {
	sum := 0.0
	n := 0
	for _, s := range sessions {
		if m, ok := durationMinutes(s); ok {
			sum += m
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// chronological returns a copy sorted by start time; ties keep input order.
func chronological(sessions []StudySession) []StudySession {
	out := make([]StudySession, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}

func masteryPercent(progress []FlashcardProgress) float64 {
	if len(progress) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range progress {
		sum += p.MasteryLevel
	}
	return sum / float64(len(progress)) * 100 / MaxMasteryLevel
}

func subjectKey(subject string) string {
	s := strings.TrimSpace(subject)
	if s == "" {
		return "general"
	}
	return s
}

func progressBySubject(progress []FlashcardProgress) map[string][]FlashcardProgress {
	out := map[string][]FlashcardProgress{}
	for _, p := range progress {
		k := subjectKey(p.Subject)
		out[k] = append(out[k], p)
	}
	return out
}

func sessionsBySubject(sessions []StudySession) map[string][]StudySession {
	out := map[string][]StudySession{}
	for _, s := range sessions {
		k := subjectKey(s.Subject)
		out[k] = append(out[k], s)
	}
	return out
}

// subjectMastery returns mastery percent per subject present in progress.
func subjectMastery(progress []FlashcardProgress) map[string]float64 {
	out := map[string]float64{}
	for subject, rows := range progressBySubject(progress) {
		out[subject] = masteryPercent(rows)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clockString(hour, minute int) string {
	total := ((hour*60+minute)%(24*60) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
