package unitofwork

import (
	"context"

	"notesquest-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	SummaryRepository() contract.SummaryRepository
	QuizRepository() contract.QuizRepository
	FlashcardSetRepository() contract.FlashcardSetRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
