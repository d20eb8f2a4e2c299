package dto

import (
	"time"

	"github.com/google/uuid"
)

type QueryRequest struct {
	DocumentId string `json:"document_id" validate:"required,uuid"`
	Query      string `json:"query" validate:"required"`
	TopN       int    `json:"top_n" validate:"omitempty,min=1"`
	BatchId    string `json:"batch_id"`
}

type RankedChunkResponse struct {
	ChunkId    uuid.UUID `json:"chunk_id"`
	BatchId    string    `json:"batch_id"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Score      float64   `json:"score"`
	Comparable bool      `json:"comparable"`
}

type TurnResponse struct {
	Role          string                 `json:"role"`
	Content       string                 `json:"content"`
	CitedChunkIds []uuid.UUID            `json:"cited_chunk_ids"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type QueryResponse struct {
	Answer       string                `json:"answer"`
	RankedChunks []RankedChunkResponse `json:"ranked_chunks"`
	History      []TurnResponse        `json:"history"`
}

type HistoryResponse struct {
	DocumentId uuid.UUID      `json:"document_id"`
	Turns      []TurnResponse `json:"turns"`
}
