package entity

import (
	"time"

	"github.com/google/uuid"

	"notesquest-be/pkg/flashcard"
	"notesquest-be/pkg/quiz"
)

type Summary struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	OwnerId    *uuid.UUID
	Content    string
	Provider   string
	Model      string
	Fallback   bool
	CreatedAt  time.Time
}

type Quiz struct {
	Id            uuid.UUID
	DocumentId    uuid.UUID
	OwnerId       *uuid.UUID
	QuestionsText string
	Questions     []quiz.Question
	NumQuestions  int
	Difficulty    string
	Provider      string
	Model         string
	Fallback      bool
	CreatedAt     time.Time
}

type FlashcardSet struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	OwnerId    *uuid.UUID
	Cards      []flashcard.Card
	NumCards   int
	Provider   string
	Model      string
	Fallback   bool
	CreatedAt  time.Time
}
