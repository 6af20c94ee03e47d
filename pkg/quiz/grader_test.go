package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []Question {
	return []Question{
		{Number: 1, Question: "What is 2+2?", Options: Options{A: "3", B: "4", C: "5", D: "6"}, CorrectAnswer: "B"},
		{Number: 2, Question: "Capital of France?", Options: Options{A: "Berlin", B: "Madrid", C: "Paris", D: "Rome"}, CorrectAnswer: "C"},
	}
}

func TestGradeAllCorrect(t *testing.T) {
	attempt := Grade(sampleQuestions(), map[int]string{1: "B", 2: "C"})

	assert.Equal(t, 2, attempt.Total)
	assert.Equal(t, 2, attempt.Correct)
	assert.Equal(t, 0, attempt.Incorrect)
	assert.Equal(t, 100, attempt.Percentage)
}

func TestGradeSingleQuestionScenario(t *testing.T) {
	questions := []Question{
		{Number: 1, Question: "What is 2+2?", Options: Options{A: "3", B: "4", C: "5", D: "6"}, CorrectAnswer: "B"},
	}
	attempt := Grade(questions, map[int]string{1: "B"})

	assert.Equal(t, 1, attempt.Correct)
	assert.Equal(t, 0, attempt.Incorrect)
	assert.Equal(t, 100, attempt.Percentage)
}

func TestGradeUnansweredCountsIncorrect(t *testing.T) {
	attempt := Grade(sampleQuestions(), map[int]string{1: "B"})

	assert.Equal(t, 1, attempt.Correct)
	assert.Equal(t, 1, attempt.Incorrect)
	assert.Equal(t, 50, attempt.Percentage)

	require.Len(t, attempt.Results, 2)
	assert.False(t, attempt.Results[1].Answered)
	assert.False(t, attempt.Results[1].IsCorrect)
}

func TestGradeCaseInsensitiveLabels(t *testing.T) {
	attempt := Grade(sampleQuestions(), map[int]string{1: "b", 2: " c "})
	assert.Equal(t, 2, attempt.Correct)
}

func TestGradeEmptyQuestionSet(t *testing.T) {
	attempt := Grade(nil, map[int]string{1: "A"})

	assert.Equal(t, 0, attempt.Total)
	assert.Equal(t, 0, attempt.Percentage)
}

func TestGradeIdempotent(t *testing.T) {
	answers := map[int]string{1: "A", 2: "C"}
	first := Grade(sampleQuestions(), answers)
	second := Grade(sampleQuestions(), answers)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Total, first.Correct+first.Incorrect)
	assert.GreaterOrEqual(t, first.Percentage, 0)
	assert.LessOrEqual(t, first.Percentage, 100)
}
