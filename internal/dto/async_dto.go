package dto

import (
	"github.com/google/uuid"

	"notesquest-be/pkg/flashcard"
	"notesquest-be/pkg/quiz"
)

// PersistResultMessage carries a finished generation to the consumer
// for append-only storage.
type PersistResultMessage struct {
	Kind       string     `json:"kind"`
	DocumentId uuid.UUID  `json:"document_id"`
	OwnerId    *uuid.UUID `json:"owner_id,omitempty"`

	Summary       string           `json:"summary,omitempty"`
	QuestionsText string           `json:"questions_text,omitempty"`
	Questions     []quiz.Question  `json:"questions,omitempty"`
	Cards         []flashcard.Card `json:"cards,omitempty"`

	NumQuestions int    `json:"num_questions,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	NumCards     int    `json:"num_cards,omitempty"`

	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
}

// PersistTranscriptMessage appends one completed chat exchange to a
// session transcript.
type PersistTranscriptMessage struct {
	ChatSessionId    uuid.UUID `json:"chat_session_id"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	Thinking         string    `json:"thinking,omitempty"`
	Provider         string    `json:"provider,omitempty"`
}
