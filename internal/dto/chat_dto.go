package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type SessionListItem struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateSessionTitleRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type ChatHistoryItem struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Thinking  string    `json:"thinking,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id"`
	Message       string     `json:"message" validate:"required"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Title         string    `json:"title"`
	Reply         string    `json:"reply"`
	Thinking      string    `json:"thinking,omitempty"`
	Provider      string    `json:"provider"`
	Fallback      bool      `json:"fallback"`
}
