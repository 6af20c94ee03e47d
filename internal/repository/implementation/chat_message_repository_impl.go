package implementation

import (
	"context"
	"errors"

	"notesquest-be/internal/entity"
	"notesquest-be/internal/mapper"
	"notesquest-be/internal/model"
	"notesquest-be/internal/repository/contract"
	"notesquest-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMessageMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMessageMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).Delete(&model.ChatMessage{}).Error
}

func (r *ChatMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
