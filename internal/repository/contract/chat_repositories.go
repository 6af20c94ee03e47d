package contract

import (
	"context"

	"notesquest-be/internal/entity"
	"notesquest-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
