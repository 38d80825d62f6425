package insights

import "time"

// StudySession is the engine's view of one study interval. DurationSeconds stays nil until the
// session is closed by the session manager.
type StudySession struct {
	ID              string    `json:"id,omitempty"`
	StartTime       time.Time `json:"startTime"`
	DurationSeconds *int      `json:"duration,omitempty"`
	CardsReviewed   int       `json:"cardsReviewed"`
	CardsCorrect    int       `json:"cardsCorrect"`
	Subject         string    `json:"subject,omitempty"`
	FlashcardSetID  string    `json:"flashcardSetId,omitempty"`
	IsActive        bool      `json:"isActive"`
}

// FlashcardProgress is one (user, card) mastery record. MasteryLevel is ordinal on 0..MaxMasteryLevel.
type FlashcardProgress struct {
	CardID         string     `json:"cardId,omitempty"`
	MasteryLevel   float64    `json:"masteryLevel"`
	Grade          string     `json:"grade,omitempty"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	Subject        string     `json:"subject,omitempty"`
}

// PeerStudyTime is one row of the peer population sample. A peer may appear many times.
type PeerStudyTime struct {
	UserID          string `json:"userId"`
	DurationSeconds int    `json:"duration"`
}

const MaxMasteryLevel = 5.0

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type ResourceType string

const (
	ResourceFlashcards ResourceType = "flashcards"
	ResourceQuiz       ResourceType = "quiz"
	ResourceReview     ResourceType = "review"
	ResourcePractice   ResourceType = "practice"
)

type StepPerformance struct {
	Accuracy         float64 `json:"accuracy"`
	TimeSpentMinutes int     `json:"timeSpent"`
}

type AdaptiveStep struct {
	StepNumber           int              `json:"stepNumber"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	ResourceType         ResourceType     `json:"resourceType"`
	EstimatedTimeMinutes int              `json:"estimatedTimeMinutes"`
	Prerequisites        []int            `json:"prerequisites"`
	Completed            bool             `json:"completed"`
	Performance          *StepPerformance `json:"performance,omitempty"`
}

type LearningPath struct {
	Subject                 string         `json:"subject"`
	Difficulty              Difficulty     `json:"difficulty"`
	AverageMastery          float64        `json:"averageMastery"`
	Steps                   []AdaptiveStep `json:"steps"`
	CurrentStep             int            `json:"currentStep"`
	EstimatedCompletionDays int            `json:"estimatedCompletionDays"`
	SessionCount            int            `json:"sessionCount"`
	RecentAccuracy          float64        `json:"recentAccuracy"`
}

type PatternType string

const (
	PatternStudyTiming          PatternType = "study_timing"
	PatternSessionLength        PatternType = "session_length"
	PatternBreakFrequency       PatternType = "break_frequency"
	PatternDifficultyPreference PatternType = "difficulty_preference"
	PatternSubjectRotation      PatternType = "subject_rotation"
)

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"
)

type BehavioralPattern struct {
	PatternType    PatternType `json:"patternType"`
	Pattern        string      `json:"pattern"`
	Frequency      float64     `json:"frequency"`
	Effectiveness  float64     `json:"effectiveness"`
	Impact         Impact      `json:"impact"`
	Recommendation string      `json:"recommendation,omitempty"`
	PeakHour       *int        `json:"peakHour,omitempty"`
	AverageMinutes *float64    `json:"averageMinutes,omitempty"`
}

type CognitiveLoad string

const (
	LoadLow    CognitiveLoad = "low"
	LoadMedium CognitiveLoad = "medium"
	LoadHigh   CognitiveLoad = "high"
)

type OptimalTimeSlot struct {
	StartTime           string        `json:"startTime"`
	EndTime             string        `json:"endTime"`
	EfficiencyScore     float64       `json:"efficiencyScore"`
	RecommendedSubjects []string      `json:"recommendedSubjects"`
	CognitiveLoad       CognitiveLoad `json:"cognitiveLoad"`
	SampleSize          int           `json:"sampleSize"`
}

type Intensity string

const (
	IntensityIntensive Intensity = "intensive"
	IntensityModerate  Intensity = "moderate"
	IntensityLight     Intensity = "light"
)

type WeeklySlot struct {
	DayOfWeek       int       `json:"dayOfWeek"`
	Day             string    `json:"day"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Intensity       Intensity `json:"intensity"`
	FromHistory     bool      `json:"fromHistory"`
}

type BreakRecommendation struct {
	AfterMinutes    int    `json:"afterMinutes"`
	DurationMinutes int    `json:"durationMinutes"`
	Activity        string `json:"activity"`
}

type StudySchedule struct {
	OptimalTimeSlots     []OptimalTimeSlot     `json:"optimalTimeSlots"`
	WeeklyPattern        []WeeklySlot          `json:"weeklyPattern"`
	BreakRecommendations []BreakRecommendation `json:"breakRecommendations"`
	UsesDefaults         bool                  `json:"usesDefaults"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

type VelocityTrend string

const (
	VelocityAccelerating VelocityTrend = "accelerating"
	VelocityStable       VelocityTrend = "stable"
	VelocityDeclining    VelocityTrend = "declining"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type SubjectForecast struct {
	Subject            string             `json:"subject"`
	CurrentMastery     float64            `json:"currentMastery"`
	ProjectedMastery   float64            `json:"projectedMastery"`
	Velocity           float64            `json:"velocity"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
	SampleSize         int                `json:"sampleSize"`
}

type RiskArea struct {
	Subject  string    `json:"subject"`
	Severity RiskLevel `json:"severity"`
	Reason   string    `json:"reason"`
	Mastery  float64   `json:"mastery"`
	Velocity float64   `json:"velocity"`
}

type RecommendedAction struct {
	Action    string   `json:"action"`
	Priority  Priority `json:"priority"`
	Timeframe string   `json:"timeframe"`
	Category  string   `json:"category"`
	Subject   string   `json:"subject,omitempty"`
}

type PerformanceForecast struct {
	OverallTrend       Trend               `json:"overallTrend"`
	HorizonDays        int                 `json:"horizonDays"`
	SubjectForecasts   []SubjectForecast   `json:"subjectForecasts"`
	RiskAreas          []RiskArea          `json:"riskAreas"`
	RecommendedActions []RecommendedAction `json:"recommendedActions"`
}

// StudyLoad summarizes recent session volume: burnout risk and learning velocity.
type StudyLoad struct {
	BurnoutRisk               RiskLevel     `json:"burnoutRisk"`
	RecommendedBreakFrequency int           `json:"recommendedBreakFrequency"`
	LearningVelocityTrend     VelocityTrend `json:"learningVelocityTrend"`
	RecentAverageMinutes      float64       `json:"recentAverageMinutes"`
	PriorAverageMinutes       float64       `json:"priorAverageMinutes"`
	AverageDailyMinutes       float64       `json:"averageDailyMinutes"`
}

type StreakComparison string

const (
	StreakBelowAverage StreakComparison = "below_average"
	StreakAverage      StreakComparison = "average"
	StreakAboveAverage StreakComparison = "above_average"
)

type SubjectRanking struct {
	Subject    string  `json:"subject"`
	Percentile float64 `json:"percentile"`
	Mastery    float64 `json:"mastery"`
}

type ComparativeMetrics struct {
	PerformancePercentile float64          `json:"performancePercentile"`
	AveragePeerStudyTime  float64          `json:"averagePeerStudyTime"`
	UserStudyTime         float64          `json:"userStudyTime"`
	PeerCount             int              `json:"peerCount"`
	StreakComparison      StreakComparison `json:"streakComparison"`
	SubjectRankings       []SubjectRanking `json:"subjectRankings"`
}

type SuggestionCategory string

const (
	CategorySchedule    SuggestionCategory = "schedule"
	CategoryContent     SuggestionCategory = "content"
	CategoryTechnique   SuggestionCategory = "technique"
	CategoryEnvironment SuggestionCategory = "environment"
)

type OptimizationSuggestion struct {
	ID             string             `json:"id"`
	Category       SuggestionCategory `json:"category"`
	Priority       int                `json:"priority"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	ExpectedImpact string             `json:"expectedImpact"`
	ActionItems    []string           `json:"actionItems"`
}

type DataStatus string

const (
	DataStatusReady        DataStatus = "ready"
	DataStatusInsufficient DataStatus = "insufficient_data"
)

// Insights is the AdaptiveLearningInsights value returned by ComputeInsights.
type Insights struct {
	DataStatus    DataStatus               `json:"dataStatus"`
	Message       string                   `json:"message,omitempty"`
	SessionCount  int                      `json:"sessionCount"`
	LearningPaths []LearningPath           `json:"learningPaths"`
	Schedule      StudySchedule            `json:"schedule"`
	Forecast      PerformanceForecast      `json:"forecast"`
	Patterns      []BehavioralPattern      `json:"patterns"`
	StudyLoad     StudyLoad                `json:"studyLoad"`
	Comparative   ComparativeMetrics       `json:"comparative"`
	Suggestions   []OptimizationSuggestion `json:"suggestions"`
	Preferences   StudyPreferences         `json:"preferences"`
}
