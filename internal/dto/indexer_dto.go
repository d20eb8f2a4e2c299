package dto

import (
	"time"

	"github.com/google/uuid"
)

type IndexRequest struct {
	DocumentId string `json:"document_id" validate:"required,uuid"`
}

type IndexResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	BatchId    string    `json:"batch_id"`
	Chunks     int       `json:"chunks"`
}

type BatchResponse struct {
	BatchId    string    `json:"batch_id"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type DocumentQuery struct {
	DocumentId string `query:"document_id" validate:"required,uuid"`
}
