package dto

import (
	"time"

	"github.com/google/uuid"

	"notesquest-be/pkg/flashcard"
	"notesquest-be/pkg/quiz"
)

// Generation requests accept either a stored document or inline
// content. Exactly one of DocumentId / Content must be set; the
// service enforces it.

type GenerateSummaryRequest struct {
	DocumentId *uuid.UUID `json:"document_id"`
	Content    string     `json:"content"`
	Title      string     `json:"title"`
	MaxLength  int        `json:"max_length" validate:"omitempty,min=50,max=2000"`
	Force      bool       `json:"force"`
}

type SummaryResponse struct {
	Id         uuid.UUID `json:"id,omitempty"`
	DocumentId uuid.UUID `json:"document_id,omitempty"`
	Summary    string    `json:"summary"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model,omitempty"`
	Fallback   bool      `json:"fallback"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

type GenerateQuizRequest struct {
	DocumentId   *uuid.UUID `json:"document_id"`
	Content      string     `json:"content"`
	Title        string     `json:"title"`
	NumQuestions int        `json:"num_questions" validate:"omitempty,min=1,max=50"`
	Difficulty   string     `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Force        bool       `json:"force"`
}

type QuizResponse struct {
	Id         uuid.UUID       `json:"id,omitempty"`
	DocumentId uuid.UUID       `json:"document_id,omitempty"`
	Questions  []quiz.Question `json:"questions"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model,omitempty"`
	Fallback   bool            `json:"fallback"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

type GenerateFlashcardsRequest struct {
	DocumentId *uuid.UUID `json:"document_id"`
	Content    string     `json:"content"`
	Title      string     `json:"title"`
	NumCards   int        `json:"num_cards" validate:"omitempty,min=1,max=50"`
	Force      bool       `json:"force"`
}

type FlashcardsResponse struct {
	Id         uuid.UUID        `json:"id,omitempty"`
	DocumentId uuid.UUID        `json:"document_id,omitempty"`
	Cards      []flashcard.Card `json:"flashcards"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model,omitempty"`
	Fallback   bool             `json:"fallback"`
	CreatedAt  time.Time        `json:"created_at,omitempty"`
}

// GradeQuizRequest submits answers keyed by question number against
// the latest quiz of a document. Keys arrive as strings over JSON.
type GradeQuizRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

type GradeQuizResponse struct {
	QuizId     uuid.UUID           `json:"quiz_id"`
	DocumentId uuid.UUID           `json:"document_id"`
	Total      int                 `json:"total"`
	Correct    int                 `json:"correct"`
	Incorrect  int                 `json:"incorrect"`
	Percentage int                 `json:"percentage"`
	Results    []quiz.AnswerResult `json:"results"`
}
