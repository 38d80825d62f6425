package insights

import (
	"fmt"

	apperrors "github.com/yungbote/neurobridge-insights/internal/pkg/errors"
)

// ValidationError reports an input record the engine refuses to aggregate.
type ValidationError struct {
	Field  string
	Reason string
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return apperrors.ErrInvalidArgument }

// ValidateSessions fails fast on negative counters, negative durations and
// more correct answers than reviewed cards.
func ValidateSessions(sessions []StudySession) error {
	for i, s := range sessions {
		field := fmt.Sprintf("sessions[%d]", i)
		if s.StartTime.IsZero() {
			return newValidationError(field, "start_time is required")
		}
		if s.DurationSeconds != nil && *s.DurationSeconds < 0 {
			return newValidationError(field, fmt.Sprintf("negative duration %d", *s.DurationSeconds))
		}
		if s.CardsReviewed < 0 || s.CardsCorrect < 0 {
			return newValidationError(field, "card counts must be non-negative")
		}
		if s.CardsCorrect > s.CardsReviewed {
			return newValidationError(field, fmt.Sprintf("cards_correct %d exceeds cards_reviewed %d", s.CardsCorrect, s.CardsReviewed))
		}
	}
	return nil
}

func ValidateProgress(progress []FlashcardProgress) error {
	for i, p := range progress {
		if !ValidMastery(p.MasteryLevel) {
			return newValidationError(fmt.Sprintf("progress[%d]", i), fmt.Sprintf("mastery_level %.2f outside [0,%.0f]", p.MasteryLevel, MaxMasteryLevel))
		}
	}
	return nil
}

// ValidMastery reports whether m is a finite level on the mastery scale.
func ValidMastery(m float64) bool {
	return m >= 0 && m <= MaxMasteryLevel
}

func ValidatePeers(peers []PeerStudyTime) error {
	for i, p := range peers {
		if p.DurationSeconds < 0 {
			return newValidationError(fmt.Sprintf("peers[%d]", i), "negative duration")
		}
	}
	return nil
}
