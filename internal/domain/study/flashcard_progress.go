package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlashcardProgress is the mastery record for one (user, card) pair. MasteryLevel runs 0-5.
type FlashcardProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_flashcard_progress_user_card,priority:1" json:"user_id"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null;column:flashcard_id;uniqueIndex:idx_flashcard_progress_user_card,priority:2" json:"flashcard_id"`
	Subject     string    `gorm:"column:subject;type:text;not null;default:''" json:"subject"`

	MasteryLevel   float64    `gorm:"column:mastery_level;not null;default:0" json:"mastery_level"`
	Grade          string     `gorm:"column:grade;type:text" json:"grade,omitempty"`
	LastReviewedAt *time.Time `gorm:"column:last_reviewed_at;index" json:"last_reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (FlashcardProgress) TableName() string { return "flashcard_progress" }

func (p *FlashcardProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
