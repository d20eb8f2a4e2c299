package contract

import (
	"context"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
)

// ChunkRepository is append-only per indexing run.
type ChunkRepository interface {
	// CreateBulk inserts all chunks or none. It fails with
	// apperror.ErrDuplicateKey when any (owner, document, batch, index) exists.
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error

	// FindEmbedded returns every chunk of the document that has an embedding,
	// across all batches unless batchId is set, in original chunk order.
	// It fails with apperror.ErrNotFound when the result would be empty.
	FindEmbedded(ctx context.Context, ownerId, documentId uuid.UUID, batchId string) ([]*entity.Chunk, error)

	ListBatches(ctx context.Context, ownerId, documentId uuid.UUID) ([]entity.BatchSummary, error)
	DeleteByDocument(ctx context.Context, ownerId, documentId uuid.UUID) (int64, error)
}
