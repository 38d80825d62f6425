package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-insights/internal/data/repos/study"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

type StudySessionRepo = study.StudySessionRepo
type FlashcardProgressRepo = study.FlashcardProgressRepo
type StudyPreferenceRepo = study.StudyPreferenceRepo

type PeerTotal = study.PeerTotal

type Repos struct {
	StudySessions     StudySessionRepo
	FlashcardProgress FlashcardProgressRepo
	StudyPreferences  StudyPreferenceRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		StudySessions:     study.NewStudySessionRepo(db, log),
		FlashcardProgress: study.NewFlashcardProgressRepo(db, log),
		StudyPreferences:  study.NewStudyPreferenceRepo(db, log),
	}
}
