package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ByBatchID is a no-op when BatchID is empty.
type ByBatchID struct {
	BatchID string
}

func (s ByBatchID) Apply(db *gorm.DB) *gorm.DB {
	if s.BatchID == "" {
		return db
	}
	return db.Where("batch_id = ?", s.BatchID)
}

type HasEmbedding struct{}

func (s HasEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL")
}

// OriginalChunkOrder orders chunks by indexing run, then position in the run.
type OriginalChunkOrder struct{}

func (s OriginalChunkOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("batch_id ASC").Order("chunk_index ASC")
}
