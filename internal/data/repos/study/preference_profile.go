package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-insights/internal/domain"
	"github.com/yungbote/neurobridge-insights/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

type StudyPreferenceRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.StudyPreferenceProfile, error)
	Upsert(dbc dbctx.Context, row *types.StudyPreferenceProfile) error
}

type studyPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) StudyPreferenceRepo {
	return &studyPreferenceRepo{db: db, log: baseLog.With("repo", "StudyPreferenceRepo")}
}

// GetByUserID returns nil, nil when the user has never saved preferences.
func (r *studyPreferenceRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.StudyPreferenceProfile, error) {
	t := dbc.DB(r.db)
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.StudyPreferenceProfile
	if err := t.Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *studyPreferenceRepo) Upsert(dbc dbctx.Context, row *types.StudyPreferenceProfile) error {
	t := dbc.DB(r.db)
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return t.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"prefs_json",
				"timezone",
				"updated_at",
			}),
		}).
		Create(row).Error
}
