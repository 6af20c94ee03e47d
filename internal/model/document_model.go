package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId          *uuid.UUID     `gorm:"type:uuid;index"` // nil in no-auth mode
	Title            string         `gorm:"type:varchar(255);not null"`
	Content          string         `gorm:"type:text"`
	FileName         string         `gorm:"type:varchar(255)"`
	FileType         string         `gorm:"type:varchar(50)"`
	FileSize         int64          `gorm:"type:bigint"`
	ExtractionMethod string         `gorm:"type:varchar(20)"`
	Status           string         `gorm:"type:varchar(20);not null;index"`
	Degraded         bool           `gorm:"not null;default:false"`
	ErrorMessage     string         `gorm:"type:text"`
	StorageKey       string         `gorm:"type:varchar(512)"` // object storage key for the original upload
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
