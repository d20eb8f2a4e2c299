package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded PDF owned by one user.
type Document struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	OriginalName string
	Filename     string
	Path         string
	Size         int64
	UploadedAt   time.Time
}
