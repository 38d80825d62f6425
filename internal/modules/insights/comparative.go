package insights

import (
	"sort"
	"time"
)

const (
	neutralPercentile     = 50.0
	minSubjectPercentile  = 5.0
	maxSubjectPercentile  = 95.0
	aboveAverageThreshold = 75.0
	averageThreshold      = 25.0
)

// ComparePeers ranks the user's total study time against the peer sample. Peer rows are summed
// per user first; the caller is expected to exclude the user's own rows.
//
// Subject rankings use the user's mastery as a stand-in percentile until per-subject peer data exists.
func ComparePeers(userTotalSeconds int, peers []PeerStudyTime, subjectMastery map[string]float64) ComparativeMetrics {
	perUser := map[string]int{}
	for _, p := range peers {
		if p.DurationSeconds < 0 {
			continue
		}
		perUser[p.UserID] += p.DurationSeconds
	}
	totals := make([]int, 0, len(perUser))
	sum := 0
	for _, t := range perUser {
		totals = append(totals, t)
		sum += t
	}
	sort.Ints(totals)

	out := ComparativeMetrics{
		PerformancePercentile: neutralPercentile,
		UserStudyTime:         round2(float64(userTotalSeconds) / 3600),
		PeerCount:             len(totals),
		SubjectRankings:       []SubjectRanking{},
	}
	if len(totals) > 0 {
		atOrBelow := sort.Search(len(totals), func(i int) bool { return totals[i] > userTotalSeconds })
		out.PerformancePercentile = round2(clamp(float64(atOrBelow)/float64(len(totals))*100, 0, 100))
		out.AveragePeerStudyTime = round2(float64(sum) / float64(len(totals)) / 3600)
	}

	switch {
	case out.PerformancePercentile > aboveAverageThreshold:
		out.StreakComparison = StreakAboveAverage
	case out.PerformancePercentile > averageThreshold:
		out.StreakComparison = StreakAverage
	default:
		out.StreakComparison = StreakBelowAverage
	}

	for _, subject := range sortedKeys(subjectMastery) {
		m := clamp(subjectMastery[subject], 0, 100)
		out.SubjectRankings = append(out.SubjectRankings, SubjectRanking{
			Subject:    subject,
			Percentile: round2(clamp(m, minSubjectPercentile, maxSubjectPercentile)),
			Mastery:    round2(m),
		})
	}
	return out
}

// totalStudySeconds sums recorded durations of closed sessions starting at or after since.
func totalStudySeconds(sessions []StudySession, since *time.Time) int {
	total := 0
	for _, s := range closedSessions(sessions) {
		if since != nil && s.StartTime.Before(*since) {
			continue
		}
		total += *s.DurationSeconds
	}
	return total
}
