package flashcard

import (
	"encoding/json"

	"notesquest-be/internal/apperror"
)

// Card is the canonical flashcard shape persisted and served to
// callers, regardless of which provider produced it.
type Card struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

const (
	DefaultCategory   = "General"
	DefaultDifficulty = "easy"
)

// Field synonyms seen across providers. Tolerance lives here, at the
// parser boundary, so the rest of the code only deals with Card.
var (
	frontKeys = []string{"front", "term", "question"}
	backKeys  = []string{"back", "definition", "answer"}
)

// Normalize maps loosely shaped card payloads into canonical Cards.
// Cards with neither a front nor a back are dropped; an input that
// yields no usable cards at all is a ParseError.
func Normalize(raw []map[string]any) ([]Card, error) {
	cards := make([]Card, 0, len(raw))
	for _, item := range raw {
		card := Card{
			Front:      firstString(item, frontKeys),
			Back:       firstString(item, backKeys),
			Category:   stringOr(item, "category", DefaultCategory),
			Difficulty: stringOr(item, "difficulty", DefaultDifficulty),
		}
		if card.Front == "" && card.Back == "" {
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return nil, &apperror.ParseError{Kind: "flashcards", Message: "no usable cards in payload"}
	}
	return cards, nil
}

// NormalizeJSON decodes a raw JSON array and normalizes it.
func NormalizeJSON(data []byte) ([]Card, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &apperror.ParseError{Kind: "flashcards", Message: "payload is not a JSON array of cards"}
	}
	return Normalize(raw)
}

func firstString(item map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := item[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringOr(item map[string]any, key, fallback string) string {
	if s, ok := item[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
