package insights

import "time"

var testBase = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) // Monday

func secs(minutes int) *int {
	v := minutes * 60
	return &v
}

func session(start time.Time, minutes, reviewed, correct int, subject string) StudySession {
	return StudySession{
		StartTime:       start,
		DurationSeconds: secs(minutes),
		CardsReviewed:   reviewed,
		CardsCorrect:    correct,
		Subject:         subject,
	}
}

// dailyAt returns n sessions on consecutive days starting at the given hour.
func dailyAt(n, hour, minutes, reviewed, correct int, subject string) []StudySession {
	out := make([]StudySession, 0, n)
	for i := 0; i < n; i++ {
		start := testBase.AddDate(0, 0, i).Add(time.Duration(hour) * time.Hour)
		out = append(out, session(start, minutes, reviewed, correct, subject))
	}
	return out
}

func progressRows(subject string, levels ...float64) []FlashcardProgress {
	out := make([]FlashcardProgress, 0, len(levels))
	for _, l := range levels {
		out = append(out, FlashcardProgress{MasteryLevel: l, Subject: subject})
	}
	return out
}

func findPattern(patterns []BehavioralPattern, t PatternType) (BehavioralPattern, bool) {
	for _, p := range patterns {
		if p.PatternType == t {
			return p, true
		}
	}
	return BehavioralPattern{}, false
}
