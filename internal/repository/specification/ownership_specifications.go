package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy scopes rows to an owner. A nil owner is the no-auth mode and
// matches rows with no owner, so single-user deployments work without
// accounts.
type OwnedBy struct {
	OwnerId *uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	if s.OwnerId == nil {
		return db.Where("owner_id IS NULL")
	}
	return db.Where("owner_id = ?", *s.OwnerId)
}

// ByDocumentID filters generation results by their source document.
type ByDocumentID struct {
	DocumentId uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// BySessionID filters chat messages by session.
type BySessionID struct {
	SessionId uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.SessionId)
}

// ByStatus filters documents by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
