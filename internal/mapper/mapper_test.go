package mapper

import (
	"testing"
	"time"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMapper_AbsentEmbeddingStaysNil(t *testing.T) {
	m := NewChunkMapper()
	chunk := &entity.Chunk{Id: uuid.New(), Text: "pending", BatchId: "b1"}

	row := m.ToModel(chunk)
	assert.Nil(t, row.Embedding)

	back := m.ToEntity(row)
	assert.Nil(t, back.Embedding)
	assert.False(t, back.HasEmbedding())
}

func TestChunkMapper_EmbeddingSurvives(t *testing.T) {
	m := NewChunkMapper()
	chunk := &entity.Chunk{
		Id:         uuid.New(),
		OwnerId:    uuid.New(),
		DocumentId: uuid.New(),
		BatchId:    "1700000000000-abc123",
		Index:      3,
		Text:       "text",
		Embedding:  []float32{0.1, 0.2, 0.3},
	}

	back := m.ToEntity(m.ToModel(chunk))

	assert.Equal(t, chunk.Embedding, back.Embedding)
	assert.Equal(t, chunk.OwnerId, back.OwnerId)
	assert.Equal(t, 3, back.Index)
}

func TestConversationMapper_CitationOrder(t *testing.T) {
	m := NewConversationMapper()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	turn := &entity.ConversationTurn{
		Id:            uuid.New(),
		Role:          entity.TurnRoleAssistant,
		Content:       "answer",
		CitedChunkIds: ids,
		Meta:          map[string]interface{}{"top_n": 3},
		CreatedAt:     time.Now(),
	}

	row := m.TurnToModel(uuid.New(), 5, turn)
	require.Len(t, row.Citations, 3)
	assert.Equal(t, 5, row.Position)

	// shuffle storage order; positions must restore rank order
	row.Citations[0], row.Citations[2] = row.Citations[2], row.Citations[0]

	back := m.TurnToEntity(row)
	assert.Equal(t, ids, back.CitedChunkIds)
	assert.Equal(t, entity.TurnRoleAssistant, back.Role)
	assert.Equal(t, 3, back.Meta["top_n"])
}
