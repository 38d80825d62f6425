package insights

import "fmt"

const (
	beginnerThreshold = 30.0
	advancedThreshold = 70.0
	stepsPerDay       = 2
)

type stepTemplate struct {
	title        string
	description  string
	resourceType ResourceType
	minutes      int
}

// Per-step-type time table, in minutes.
var (
	foundationSteps = []stepTemplate{
		{"Core concepts", "Learn the key terms of %s with new flashcards.", ResourceFlashcards, 20},
		{"Guided review", "Review the %s basics with hints before testing yourself.", ResourceReview, 15},
	}
	coreSteps = []stepTemplate{
		{"Reinforcement practice", "Practice %s cards you missed until recall is fluent.", ResourcePractice, 25},
		{"Application quiz", "Apply %s knowledge in a short quiz.", ResourceQuiz, 20},
	}
	challengeSteps = []stepTemplate{
		{"Challenge set", "Work through the hardest %s cards without hints.", ResourcePractice, 35},
		{"Timed mastery quiz", "Answer %s questions under time pressure.", ResourceQuiz, 30},
	}
	closingSteps = []stepTemplate{
		{"Comprehensive review", "Review everything covered in %s so far.", ResourceReview, 30},
		{"Final assessment", "Take a full %s assessment to confirm mastery.", ResourceQuiz, 25},
	}
)

// ClassifyDifficulty maps average mastery (0-100): below 30 beginner, below 70 intermediate, else advanced.
func ClassifyDifficulty(avgMastery float64) Difficulty {
	switch {
	case avgMastery < beginnerThreshold:
		return DifficultyBeginner
	case avgMastery < advancedThreshold:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

// GenerateLearningPath builds a prerequisite chain for one subject. Rows for other subjects are ignored.
func GenerateLearningPath(subject string, sessions []StudySession, progress []FlashcardProgress) LearningPath {
	subject = subjectKey(subject)
	var rows []FlashcardProgress
	for _, p := range progress {
		if subjectKey(p.Subject) == subject {
			rows = append(rows, p)
		}
	}
	var subjectSessions []StudySession
	for _, s := range sessions {
		if subjectKey(s.Subject) == subject {
			subjectSessions = append(subjectSessions, s)
		}
	}

	avg := masteryPercent(rows)
	difficulty := ClassifyDifficulty(avg)

	templates := []stepTemplate{}
	if difficulty == DifficultyBeginner {
		templates = append(templates, foundationSteps...)
	}
	templates = append(templates, coreSteps...)
	if difficulty == DifficultyAdvanced {
		templates = append(templates, challengeSteps...)
	}
	templates = append(templates, closingSteps...)

	steps := make([]AdaptiveStep, 0, len(templates))
	for i, tpl := range templates {
		n := i + 1
		prereqs := []int{}
		if n > 1 {
			prereqs = append(prereqs, n-1)
		}
		steps = append(steps, AdaptiveStep{
			StepNumber:           n,
			Title:                tpl.title,
			Description:          fmt.Sprintf(tpl.description, subject),
			ResourceType:         tpl.resourceType,
			EstimatedTimeMinutes: tpl.minutes,
			Prerequisites:        prereqs,
		})
	}

	acc, _ := meanAccuracy(subjectSessions)
	return LearningPath{
		Subject:                 subject,
		Difficulty:              difficulty,
		AverageMastery:          round2(avg),
		Steps:                   steps,
		CurrentStep:             currentStep(steps),
		EstimatedCompletionDays: (len(steps) + stepsPerDay - 1) / stepsPerDay,
		SessionCount:            len(subjectSessions),
		RecentAccuracy:          round2(acc),
	}
}

func currentStep(steps []AdaptiveStep) int {
	for _, s := range steps {
		if !s.Completed {
			return s.StepNumber
		}
	}
	return len(steps)
}

// GenerateLearningPaths returns one path per subject seen in sessions or progress, sorted by subject.
func GenerateLearningPaths(sessions []StudySession, progress []FlashcardProgress) []LearningPath {
	subjects := map[string]struct{}{}
	for _, s := range sessions {
		subjects[subjectKey(s.Subject)] = struct{}{}
	}
	for _, p := range progress {
		subjects[subjectKey(p.Subject)] = struct{}{}
	}
	keys := sortedKeys(subjects)
	out := make([]LearningPath, 0, len(keys))
	for _, subject := range keys {
		out = append(out, GenerateLearningPath(subject, sessions, progress))
	}
	return out
}
