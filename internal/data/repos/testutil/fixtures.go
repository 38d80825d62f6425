package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-insights/internal/domain"
	"github.com/yungbote/neurobridge-insights/internal/pkg/pointers"
)

// SeedSession inserts a closed session of the given length.
func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, start time.Time, minutes int, subject string) *types.StudySession {
	tb.Helper()
	s := &types.StudySession{
		UserID:          userID,
		Subject:         subject,
		StartTime:       start.UTC(),
		EndTime:         pointers.Ptr(start.Add(time.Duration(minutes) * time.Minute).UTC()),
		DurationSeconds: pointers.Int(minutes * 60),
		CardsReviewed:   10,
		CardsCorrect:    8,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed study session: %v", err)
	}
	return s
}

// SeedActiveSession inserts an open session without a duration.
func SeedActiveSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, start time.Time) *types.StudySession {
	tb.Helper()
	s := &types.StudySession{
		UserID:    userID,
		StartTime: start.UTC(),
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed active session: %v", err)
	}
	return s
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, subject string, level float64) *types.FlashcardProgress {
	tb.Helper()
	p := &types.FlashcardProgress{
		UserID:       userID,
		FlashcardID:  uuid.New(),
		Subject:      subject,
		MasteryLevel: level,
		Grade:        "B",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed flashcard progress: %v", err)
	}
	return p
}
