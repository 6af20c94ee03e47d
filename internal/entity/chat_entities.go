package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	OwnerId   *uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	Thinking      string
	Provider      string
	CreatedAt     time.Time
}
