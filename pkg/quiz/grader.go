package quiz

import (
	"math"
	"strings"
)

// AnswerResult is the graded outcome for one question.
type AnswerResult struct {
	Number         int    `json:"number"`
	SubmittedLabel string `json:"submitted_label,omitempty"`
	CorrectLabel   string `json:"correct_label"`
	Answered       bool   `json:"answered"`
	IsCorrect      bool   `json:"is_correct"`
}

// Attempt aggregates one graded submission. It is always derived from
// the question set plus the answer map and never stored as truth.
type Attempt struct {
	Total      int            `json:"total"`
	Correct    int            `json:"correct"`
	Incorrect  int            `json:"incorrect"`
	Percentage int            `json:"percentage"`
	Results    []AnswerResult `json:"results"`
}

// Grade scores submitted answers against the parsed question set. Pure
// and idempotent: the same inputs always yield the same Attempt.
// Unanswered questions count as incorrect. An empty question set grades
// to 0%.
func Grade(questions []Question, answers map[int]string) Attempt {
	attempt := Attempt{
		Total:   len(questions),
		Results: make([]AnswerResult, 0, len(questions)),
	}

	for _, q := range questions {
		submitted, ok := answers[q.Number]
		submitted = strings.ToUpper(strings.TrimSpace(submitted))
		result := AnswerResult{
			Number:       q.Number,
			CorrectLabel: q.CorrectAnswer,
			Answered:     ok && submitted != "",
		}
		if result.Answered {
			result.SubmittedLabel = submitted
			result.IsCorrect = submitted == strings.ToUpper(q.CorrectAnswer)
		}
		if result.IsCorrect {
			attempt.Correct++
		} else {
			attempt.Incorrect++
		}
		attempt.Results = append(attempt.Results, result)
	}

	if attempt.Total > 0 {
		attempt.Percentage = int(math.Round(float64(attempt.Correct) / float64(attempt.Total) * 100))
	}
	return attempt
}
