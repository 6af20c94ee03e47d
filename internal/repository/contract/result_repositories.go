package contract

import (
	"context"

	"notesquest-be/internal/entity"
	"notesquest-be/internal/repository/specification"

	"github.com/google/uuid"
)

// Result repositories are append-only: no Update, the latest row per
// document wins. DeleteAllByDocumentId supports cascade on document
// removal. CountByDocumentIds serves list views in one grouped query.

type SummaryRepository interface {
	Create(ctx context.Context, summary *entity.Summary) error
	DeleteAllByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Summary, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Summary, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *entity.Quiz) error
	DeleteAllByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Quiz, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Quiz, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error)
}

type FlashcardSetRepository interface {
	Create(ctx context.Context, set *entity.FlashcardSet) error
	DeleteAllByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FlashcardSet, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FlashcardSet, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByDocumentIds(ctx context.Context, documentIds []uuid.UUID) (map[uuid.UUID]int64, error)
}
