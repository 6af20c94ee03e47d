package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Quizzes are append-only; the latest row per document is current.
type Quiz struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	OwnerId       *uuid.UUID     `gorm:"type:uuid;index"`
	QuestionsText string         `gorm:"type:text;not null"` // raw provider output, kept for re-parsing
	Questions     datatypes.JSON `gorm:"type:jsonb"`
	NumQuestions  int            `gorm:"not null"`
	Difficulty    string         `gorm:"type:varchar(20)"`
	Provider      string         `gorm:"type:varchar(50)"`
	Model         string         `gorm:"type:varchar(100)"`
	Fallback      bool           `gorm:"not null;default:false"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
