package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-insights/internal/domain"
	"github.com/yungbote/neurobridge-insights/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
)

// PeerTotal is the summed closed-session time of one user.
type PeerTotal struct {
	UserID       uuid.UUID `gorm:"column:user_id"`
	TotalSeconds int64     `gorm:"column:total_seconds"`
}

type StudySessionRepo interface {
	Create(dbc dbctx.Context, rows []*types.StudySession) ([]*types.StudySession, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.StudySession, error)
	ListActiveUserIDsSince(dbc dbctx.Context, since time.Time, limit int) ([]uuid.UUID, error)
	ListPeerTotalsSince(dbc dbctx.Context, excludeUserID uuid.UUID, since time.Time, limit int) ([]PeerTotal, error)
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	return &studySessionRepo{db: db, log: baseLog.With("repo", "StudySessionRepo")}
}

func (r *studySessionRepo) dbx(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db)
}

func (r *studySessionRepo) Create(dbc dbctx.Context, rows []*types.StudySession) ([]*types.StudySession, error) {
	if len(rows) == 0 {
		return []*types.StudySession{}, nil
	}
	for _, row := range rows {
		row.StartTime = row.StartTime.UTC()
		if row.EndTime != nil {
			end := row.EndTime.UTC()
			row.EndTime = &end
		}
	}
	if err := r.dbx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUserSince returns the user's sessions started at or after since, oldest first.
func (r *studySessionRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.StudySession, error) {
	var out []*types.StudySession
	if userID == uuid.Nil {
		return out, nil
	}
	if err := r.dbx(dbc).
		Where("user_id = ? AND start_time >= ?", userID, since.UTC()).
		Order("start_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *studySessionRepo) ListActiveUserIDsSince(dbc dbctx.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := r.dbx(dbc).
		Model(&types.StudySession{}).
		Where("start_time >= ?", since.UTC()).
		Distinct("user_id").
		Order("user_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPeerTotalsSince sums closed-session durations per user, excluding excludeUserID.
// When limit caps the sample, the most recently active peers are kept.
func (r *studySessionRepo) ListPeerTotalsSince(dbc dbctx.Context, excludeUserID uuid.UUID, since time.Time, limit int) ([]PeerTotal, error) {
	var out []PeerTotal
	q := r.dbx(dbc).
		Model(&types.StudySession{}).
		Select("user_id, SUM(duration) AS total_seconds").
		Where("start_time >= ? AND is_active = ? AND duration IS NOT NULL", since.UTC(), false)
	if excludeUserID != uuid.Nil {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	q = q.Group("user_id").Order("MAX(start_time) DESC").Order("user_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
