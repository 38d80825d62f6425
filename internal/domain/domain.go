package domain

import (
	"github.com/yungbote/neurobridge-insights/internal/domain/study"
)

type StudySession = study.StudySession
type FlashcardProgress = study.FlashcardProgress
type StudyPreferenceProfile = study.StudyPreferenceProfile

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&StudySession{},
		&FlashcardProgress{},
		&StudyPreferenceProfile{},
	}
}
