package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk stores one text window. The vector column has no fixed dimension so
// deployments with different embedding sizes can coexist; a NULL embedding
// marks a chunk that retrieval ignores.
type Chunk struct {
	Id               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_chunks_identity,priority:1"`
	DocumentId       uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_chunks_identity,priority:2"`
	BatchId          string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_chunks_identity,priority:3"`
	ChunkIndex       int              `gorm:"not null;uniqueIndex:idx_chunks_identity,priority:4"`
	Text             string           `gorm:"type:text;not null"`
	Embedding        *pgvector.Vector `gorm:"type:vector"`
	ApproxTokenCount int              `gorm:"not null;default:0"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}
