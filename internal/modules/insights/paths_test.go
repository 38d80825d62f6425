package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDifficultyBoundaries(t *testing.T) {
	cases := []struct {
		mastery float64
		want    Difficulty
	}{
		{0, DifficultyBeginner},
		{29.99, DifficultyBeginner},
		{30, DifficultyIntermediate},
		{69.99, DifficultyIntermediate},
		{70, DifficultyAdvanced},
		{100, DifficultyAdvanced},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyDifficulty(tc.mastery), "mastery=%v", tc.mastery)
	}
}

func TestGenerateLearningPathByLevel(t *testing.T) {
	cases := []struct {
		name       string
		level      float64
		difficulty Difficulty
		steps      int
		firstTitle string
	}{
		{"beginner", 0.5, DifficultyBeginner, 6, "Core concepts"},
		{"intermediate at 30", 1.5, DifficultyIntermediate, 4, "Reinforcement practice"},
		{"advanced at 70", 3.5, DifficultyAdvanced, 6, "Reinforcement practice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := GenerateLearningPath("math", nil, progressRows("math", tc.level))
			assert.Equal(t, tc.difficulty, path.Difficulty)
			require.Len(t, path.Steps, tc.steps)
			assert.Equal(t, tc.firstTitle, path.Steps[0].Title)
			assert.Equal(t, "Final assessment", path.Steps[len(path.Steps)-1].Title)
			assert.Equal(t, (tc.steps+1)/2, path.EstimatedCompletionDays)
			assert.Equal(t, 1, path.CurrentStep)
		})
	}
}

func TestGenerateLearningPathStepOrdering(t *testing.T) {
	path := GenerateLearningPath("math", nil, progressRows("math", 0))
	for i, step := range path.Steps {
		assert.Equal(t, i+1, step.StepNumber)
		if i == 0 {
			assert.Empty(t, step.Prerequisites)
			continue
		}
		assert.Equal(t, []int{i}, step.Prerequisites)
		assert.Positive(t, step.EstimatedTimeMinutes)
	}
}

func TestGenerateLearningPathIgnoresOtherSubjects(t *testing.T) {
	progress := append(progressRows("math", 5, 5), progressRows("art", 0)...)
	sessions := append(dailyAt(2, 9, 30, 10, 9, "math"), dailyAt(3, 9, 30, 10, 1, "art")...)

	path := GenerateLearningPath("math", sessions, progress)
	assert.Equal(t, DifficultyAdvanced, path.Difficulty)
	assert.InDelta(t, 100, path.AverageMastery, 1e-9)
	assert.Equal(t, 2, path.SessionCount)
	assert.InDelta(t, 0.9, path.RecentAccuracy, 1e-9)
}

func TestGenerateLearningPaths(t *testing.T) {
	assert.Empty(t, GenerateLearningPaths(nil, nil))

	sessions := dailyAt(1, 9, 30, 10, 9, "")
	paths := GenerateLearningPaths(sessions, append(progressRows("zoology", 2), progressRows("chemistry", 4)...))
	require.Len(t, paths, 3)
	assert.Equal(t, "chemistry", paths[0].Subject)
	assert.Equal(t, "general", paths[1].Subject)
	assert.Equal(t, "zoology", paths[2].Subject)
}
