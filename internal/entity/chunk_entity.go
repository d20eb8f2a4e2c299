package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is one window of a document's extracted text. Chunks are written in
// bulk by a single indexing run, identified by BatchId, and never mutated.
// A nil Embedding means the chunk is not retrievable.
type Chunk struct {
	Id               uuid.UUID
	OwnerId          uuid.UUID
	DocumentId       uuid.UUID
	BatchId          string
	Index            int
	Text             string
	Embedding        []float32
	ApproxTokenCount int
	CreatedAt        time.Time
}

func (c *Chunk) HasEmbedding() bool {
	return c != nil && c.Embedding != nil
}

// BatchSummary describes one indexing run of a document.
type BatchSummary struct {
	BatchId    string
	ChunkCount int
	CreatedAt  time.Time
}
