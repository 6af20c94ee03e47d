package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID
	OwnerId          *uuid.UUID
	Title            string
	Content          string
	FileName         string
	FileType         string
	FileSize         int64
	ExtractionMethod string
	Status           string
	Degraded         bool
	ErrorMessage     string
	StorageKey       string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}
