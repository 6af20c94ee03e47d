package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `Q1) What is 2+2?
A) 3
B) 4
C) 5
D) 6
Correct: B
Explanation: Basic arithmetic.

Q2) Capital of France?
A) Berlin
B) Madrid
C) Paris
D) Rome
Correct: C
`

func TestParseWellFormed(t *testing.T) {
	questions, err := Parse(wellFormed)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	q1 := questions[0]
	assert.Equal(t, 1, q1.Number)
	assert.Equal(t, "What is 2+2?", q1.Question)
	assert.Equal(t, "4", q1.Options.B)
	assert.Equal(t, "B", q1.CorrectAnswer)
	assert.Equal(t, "Basic arithmetic.", q1.Explanation)
	assert.False(t, q1.Defaulted)

	q2 := questions[1]
	assert.Equal(t, 2, q2.Number)
	assert.Equal(t, "Paris", q2.Options.C)
	assert.Equal(t, "C", q2.CorrectAnswer)
	assert.Empty(t, q2.Explanation)
}

func TestParseSingleQuestionScenario(t *testing.T) {
	questions, err := Parse("Q1) What is 2+2?\nA) 3\nB) 4\nC) 5\nD) 6\nCorrect: B")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Equal(t, "4", questions[0].Options.B)
}

func TestParseMissingCorrectDefaultsToA(t *testing.T) {
	questions, err := Parse("Q1) Pick one\nA) first\nB) second\nC) third\nD) fourth")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "A", questions[0].CorrectAnswer)
	assert.True(t, questions[0].Defaulted)
}

func TestParseMissingOptionsDefaultToEmpty(t *testing.T) {
	questions, err := Parse("Q1) Incomplete question\nA) only option\nCorrect: A")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "only option", questions[0].Options.A)
	assert.Empty(t, questions[0].Options.B)
	assert.Empty(t, questions[0].Options.C)
	assert.Empty(t, questions[0].Options.D)
}

func TestParseLowercaseAndSpacingTolerated(t *testing.T) {
	questions, err := Parse("Q1) Q?\na) one\nb) two\ncorrect:   b")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Equal(t, "two", questions[0].Options.B)
}

func TestParseNoMarkersFails(t *testing.T) {
	_, err := Parse("just some prose without any questions")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	questions, err := Parse(wellFormed)
	require.NoError(t, err)

	reparsed, err := Parse(Format(questions))
	require.NoError(t, err)
	assert.Equal(t, questions, reparsed)
}
