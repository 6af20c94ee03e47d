package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadDocumentRequest is built by the controller from the multipart
// form; the raw bytes go through extraction in-process.
type UploadDocumentRequest struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ProcessTextRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

type CreateDocumentResponse struct {
	Id               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Status           string    `json:"status"`
	ExtractionMethod string    `json:"extraction_method,omitempty"`
	Degraded         bool      `json:"degraded,omitempty"`
	ContentLength    int       `json:"content_length"`
}

type ShowDocumentResponse struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	FileName         string     `json:"file_name,omitempty"`
	FileType         string     `json:"file_type,omitempty"`
	FileSize         int64      `json:"file_size,omitempty"`
	ExtractionMethod string     `json:"extraction_method,omitempty"`
	Status           string     `json:"status"`
	Degraded         bool       `json:"degraded"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

// DocumentHistoryItem carries the availability flags so the client can
// render per-document study options without extra round trips.
type DocumentHistoryItem struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	FileType      string    `json:"file_type,omitempty"`
	Status        string    `json:"status"`
	Degraded      bool      `json:"degraded"`
	ContentLength int       `json:"content_length"`
	HasSummary    bool      `json:"has_summary"`
	HasQuiz       bool      `json:"has_quiz"`
	HasFlashcards bool      `json:"has_flashcards"`
	CreatedAt     time.Time `json:"created_at"`
}
