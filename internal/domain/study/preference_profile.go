package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudyPreferenceProfile stores a user's study preferences as JSON so new fields need no migration.
type StudyPreferenceProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	PrefsJSON datatypes.JSON `gorm:"column:prefs_json;type:jsonb;not null" json:"prefs_json"`
	Timezone  string         `gorm:"column:timezone;type:text" json:"timezone,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (StudyPreferenceProfile) TableName() string { return "study_preference_profile" }

func (p *StudyPreferenceProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
