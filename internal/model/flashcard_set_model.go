package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// A set is one generation run; cards live together as a jsonb array.
type FlashcardSet struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID      `gorm:"type:uuid;not null;index"`
	OwnerId    *uuid.UUID     `gorm:"type:uuid;index"`
	Cards      datatypes.JSON `gorm:"type:jsonb;not null"`
	NumCards   int            `gorm:"not null"`
	Provider   string         `gorm:"type:varchar(50)"`
	Model      string         `gorm:"type:varchar(100)"`
	Fallback   bool           `gorm:"not null;default:false"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (FlashcardSet) TableName() string {
	return "flashcard_sets"
}
