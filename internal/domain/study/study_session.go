package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudySession is one study interval. DurationSeconds is nil while the session is active.
type StudySession struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_study_session_user_start,priority:1" json:"user_id"`
	FlashcardSetID *uuid.UUID `gorm:"type:uuid;column:flashcard_set_id;index" json:"flashcard_set_id,omitempty"`
	Subject        string     `gorm:"column:subject;type:text;not null;default:''" json:"subject"`

	StartTime       time.Time  `gorm:"column:start_time;not null;index:idx_study_session_user_start,priority:2" json:"start_time"`
	EndTime         *time.Time `gorm:"column:end_time" json:"end_time,omitempty"`
	DurationSeconds *int       `gorm:"column:duration" json:"duration,omitempty"`

	CardsReviewed int  `gorm:"column:cards_reviewed;not null;default:0" json:"cards_reviewed"`
	CardsCorrect  int  `gorm:"column:cards_correct;not null;default:0" json:"cards_correct"`
	IsActive      bool `gorm:"column:is_active;not null;default:false;index" json:"is_active"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (StudySession) TableName() string { return "study_session" }

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
