package model

import (
	"time"

	"github.com/google/uuid"
)

// Summaries are append-only; the latest row per document is current.
type Summary struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID  `gorm:"type:uuid;not null;index"`
	OwnerId    *uuid.UUID `gorm:"type:uuid;index"`
	Content    string     `gorm:"type:text;not null"`
	Provider   string     `gorm:"type:varchar(50)"`
	Model      string     `gorm:"type:varchar(100)"`
	Fallback   bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index"`
}

func (Summary) TableName() string {
	return "summaries"
}
