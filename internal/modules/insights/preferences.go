package insights

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPreferredStudyDuration = 45
	DefaultMaxDailyStudyTime      = 180
)

// StudyPreferences is the engine's configuration surface. Zero values fall back to defaults.
type StudyPreferences struct {
	PreferredStudyDuration int    `json:"preferredStudyDuration" yaml:"preferred_study_duration" validate:"gte=0,lte=600"`
	MaxDailyStudyTime      int    `json:"maxDailyStudyTime" yaml:"max_daily_study_time" validate:"gte=0,lte=1440"`
	PreferredDifficulty    string `json:"preferredDifficulty" yaml:"preferred_difficulty" validate:"omitempty,oneof=adaptive challenging comfortable"`
	BreakFrequency         string `json:"breakFrequency" yaml:"break_frequency" validate:"omitempty,oneof=frequent moderate minimal"`
	StudyStyle             string `json:"studyStyle" yaml:"study_style" validate:"omitempty,oneof=intensive distributed mixed"`
}

var prefsValidate *validator.Validate

func init() {
	prefsValidate = validator.New()
}

func DefaultPreferences() StudyPreferences {
	return StudyPreferences{
		PreferredStudyDuration: DefaultPreferredStudyDuration,
		MaxDailyStudyTime:      DefaultMaxDailyStudyTime,
		PreferredDifficulty:    "adaptive",
		BreakFrequency:         "moderate",
		StudyStyle:             "mixed",
	}
}

// Normalize lowercases enum fields and fills unset fields from DefaultPreferences.
func (p StudyPreferences) Normalize() StudyPreferences {
	def := DefaultPreferences()
	out := p
	out.PreferredDifficulty = strings.ToLower(strings.TrimSpace(out.PreferredDifficulty))
	out.BreakFrequency = strings.ToLower(strings.TrimSpace(out.BreakFrequency))
	out.StudyStyle = strings.ToLower(strings.TrimSpace(out.StudyStyle))
	if out.PreferredStudyDuration == 0 {
		out.PreferredStudyDuration = def.PreferredStudyDuration
	}
	if out.MaxDailyStudyTime == 0 {
		out.MaxDailyStudyTime = def.MaxDailyStudyTime
	}
	if out.PreferredDifficulty == "" {
		out.PreferredDifficulty = def.PreferredDifficulty
	}
	if out.BreakFrequency == "" {
		out.BreakFrequency = def.BreakFrequency
	}
	if out.StudyStyle == "" {
		out.StudyStyle = def.StudyStyle
	}
	return out
}

// Validate checks ranges and enum values. Call on normalized preferences.
func (p StudyPreferences) Validate() error {
	if err := prefsValidate.Struct(p); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
		} else {
			fields = append(fields, err.Error())
		}
		return newValidationError("preferences", strings.Join(fields, "; "))
	}
	return nil
}
