package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-insights/internal/data/repos"
	types "github.com/yungbote/neurobridge-insights/internal/domain"
	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

// toEngineSessions converts stored sessions and drops rows the engine would reject.
// A bad row written by another service must not block a user's insights.
func toEngineSessions(log *logger.Logger, rows []*types.StudySession) []insights.StudySession {
	out := make([]insights.StudySession, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		if r == nil || r.StartTime.IsZero() {
			dropped++
			continue
		}
		if r.CardsReviewed < 0 || r.CardsCorrect < 0 || r.CardsCorrect > r.CardsReviewed {
			dropped++
			continue
		}
		if r.DurationSeconds != nil && *r.DurationSeconds < 0 {
			dropped++
			continue
		}
		s := insights.StudySession{
			ID:              r.ID.String(),
			StartTime:       r.StartTime,
			DurationSeconds: r.DurationSeconds,
			CardsReviewed:   r.CardsReviewed,
			CardsCorrect:    r.CardsCorrect,
			Subject:         r.Subject,
			IsActive:        r.IsActive,
		}
		if r.FlashcardSetID != nil {
			s.FlashcardSetID = r.FlashcardSetID.String()
		}
		out = append(out, s)
	}
	if dropped > 0 {
		log.Warn("dropped malformed study sessions", "count", dropped)
	}
	return out
}

func toEngineProgress(log *logger.Logger, rows []*types.FlashcardProgress) []insights.FlashcardProgress {
	out := make([]insights.FlashcardProgress, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		if r == nil || !insights.ValidMastery(r.MasteryLevel) {
			dropped++
			continue
		}
		out = append(out, insights.FlashcardProgress{
			CardID:         r.FlashcardID.String(),
			MasteryLevel:   r.MasteryLevel,
			Grade:          r.Grade,
			LastReviewedAt: r.LastReviewedAt,
			Subject:        r.Subject,
		})
	}
	if dropped > 0 {
		log.Warn("dropped malformed flashcard progress", "count", dropped)
	}
	return out
}

func toEnginePeers(rows []repos.PeerTotal) []insights.PeerStudyTime {
	out := make([]insights.PeerStudyTime, 0, len(rows))
	for _, r := range rows {
		if r.TotalSeconds < 0 {
			continue
		}
		out = append(out, insights.PeerStudyTime{UserID: r.UserID.String(), DurationSeconds: int(r.TotalSeconds)})
	}
	return out
}

// decodePreferences falls back to defaults when the stored JSON is unreadable or invalid.
func decodePreferences(log *logger.Logger, row *types.StudyPreferenceProfile, defaults insights.StudyPreferences) insights.StudyPreferences {
	if row == nil || len(row.PrefsJSON) == 0 {
		return defaults
	}
	prefs := defaults
	if err := json.Unmarshal(row.PrefsJSON, &prefs); err != nil {
		log.Warn("unreadable stored preferences; using defaults", "error", err)
		return defaults
	}
	prefs = prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		log.Warn("invalid stored preferences; using defaults", "error", err)
		return defaults
	}
	return prefs
}

func resolveLocation(row *types.StudyPreferenceProfile, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if row == nil || strings.TrimSpace(row.Timezone) == "" {
		return fallback
	}
	loc, err := time.LoadLocation(strings.TrimSpace(row.Timezone))
	if err != nil {
		return fallback
	}
	return loc
}
