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

type FlashcardProgressRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.FlashcardProgress) error
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.FlashcardProgress, error)
}

type flashcardProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardProgressRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardProgressRepo {
	return &flashcardProgressRepo{db: db, log: baseLog.With("repo", "FlashcardProgressRepo")}
}

func (r *flashcardProgressRepo) dbx(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db)
}

// Upsert writes progress keyed by (user_id, flashcard_id).
func (r *flashcardProgressRepo) Upsert(dbc dbctx.Context, rows []*types.FlashcardProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return r.dbx(dbc).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "flashcard_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subject",
				"mastery_level",
				"grade",
				"last_reviewed_at",
				"updated_at",
			}),
		}).
		Create(&rows).Error
}

// ListByUserSince returns progress rows touched at or after since.
func (r *flashcardProgressRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.FlashcardProgress, error) {
	var out []*types.FlashcardProgress
	if userID == uuid.Nil {
		return out, nil
	}
	if err := r.dbx(dbc).
		Where("user_id = ? AND updated_at >= ?", userID, since.UTC()).
		Order("subject ASC, flashcard_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
