package flashcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSynonymFields(t *testing.T) {
	cards, err := Normalize([]map[string]any{
		{"term": "Mitochondria", "definition": "Powerhouse of the cell"},
		{"front": "Go", "back": "A programming language", "category": "CS", "difficulty": "medium"},
		{"question": "HTTP", "answer": "Hypertext Transfer Protocol"},
	})
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, "Mitochondria", cards[0].Front)
	assert.Equal(t, "Powerhouse of the cell", cards[0].Back)
	assert.Equal(t, DefaultCategory, cards[0].Category)
	assert.Equal(t, DefaultDifficulty, cards[0].Difficulty)

	assert.Equal(t, "CS", cards[1].Category)
	assert.Equal(t, "medium", cards[1].Difficulty)

	assert.Equal(t, "HTTP", cards[2].Front)
	assert.Equal(t, "Hypertext Transfer Protocol", cards[2].Back)
}

func TestNormalizeDropsEmptyCards(t *testing.T) {
	cards, err := Normalize([]map[string]any{
		{"category": "Misc"},
		{"term": "Kept", "definition": "Yes"},
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Kept", cards[0].Front)
}

func TestNormalizeAllEmptyFails(t *testing.T) {
	_, err := Normalize([]map[string]any{{"irrelevant": true}})
	assert.Error(t, err)
}

func TestNormalizeJSON(t *testing.T) {
	cards, err := NormalizeJSON([]byte(`[{"term":"CPU","back":"Central Processing Unit"}]`))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "CPU", cards[0].Front)
	assert.Equal(t, "Central Processing Unit", cards[0].Back)
}

func TestNormalizeJSONInvalid(t *testing.T) {
	_, err := NormalizeJSON([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}
