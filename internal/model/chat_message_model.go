package model

import (
	"time"

	"github.com/google/uuid"
)

// Messages are append-only transcript rows. Thinking holds the hidden
// reasoning channel for assistant turns, empty otherwise.
type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role          string    `gorm:"type:varchar(20);not null"`
	Content       string    `gorm:"type:text;not null"`
	Thinking      string    `gorm:"type:text"`
	Provider      string    `gorm:"type:varchar(50)"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
