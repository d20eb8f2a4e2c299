package mapper

import (
	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}
	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}
	return &entity.Chunk{
		Id:               c.Id,
		OwnerId:          c.UserId,
		DocumentId:       c.DocumentId,
		BatchId:          c.BatchId,
		Index:            c.ChunkIndex,
		Text:             c.Text,
		Embedding:        embedding,
		ApproxTokenCount: c.ApproxTokenCount,
		CreatedAt:        c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}
	var embedding *pgvector.Vector
	if c.Embedding != nil {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}
	return &model.Chunk{
		Id:               c.Id,
		UserId:           c.OwnerId,
		DocumentId:       c.DocumentId,
		BatchId:          c.BatchId,
		ChunkIndex:       c.Index,
		Text:             c.Text,
		Embedding:        embedding,
		ApproxTokenCount: c.ApproxTokenCount,
		CreatedAt:        c.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.Chunk {
	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
