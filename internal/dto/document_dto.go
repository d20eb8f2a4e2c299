package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	Filename     string    `json:"filename"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// UploadFile is one multipart part handed to the document service.
type UploadFile struct {
	OriginalName string
	ContentType  string
	Size         int64
	Content      io.Reader
}

type UploadResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Skipped   []string           `json:"skipped,omitempty"`
}

type DeleteDocumentResponse struct {
	DocumentId    uuid.UUID `json:"document_id"`
	ChunksDeleted int64     `json:"chunks_deleted"`
}
