package mapper

import (
	"time"

	"notesquest-be/internal/entity"
	"notesquest-be/internal/model"

	"gorm.io/gorm"
)

type ChatSessionMapper struct{}

func NewChatSessionMapper() *ChatSessionMapper {
	return &ChatSessionMapper{}
}

func (m *ChatSessionMapper) ToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		OwnerId:   s.OwnerId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatSessionMapper) ToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		OwnerId:   s.OwnerId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChatSessionMapper) ToEntities(rows []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(rows))
	for i, s := range rows {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

type ChatMessageMapper struct{}

func NewChatMessageMapper() *ChatMessageMapper {
	return &ChatMessageMapper{}
}

func (m *ChatMessageMapper) ToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Thinking:      msg.Thinking,
		Provider:      msg.Provider,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMessageMapper) ToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Thinking:      msg.Thinking,
		Provider:      msg.Provider,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMessageMapper) ToEntities(rows []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(rows))
	for i, msg := range rows {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
