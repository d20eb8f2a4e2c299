package mapper

import (
	"sort"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// TurnToModel maps a turn to its row at the given position in the conversation.
func (m *ConversationMapper) TurnToModel(conversationId uuid.UUID, position int, t *entity.ConversationTurn) *model.ConversationTurn {
	citations := make([]model.TurnCitation, len(t.CitedChunkIds))
	for i, chunkId := range t.CitedChunkIds {
		citations[i] = model.TurnCitation{
			Id:       uuid.New(),
			TurnId:   t.Id,
			ChunkId:  chunkId,
			Position: i,
		}
	}

	var meta datatypes.JSONMap
	if len(t.Meta) > 0 {
		meta = datatypes.JSONMap(t.Meta)
	}

	return &model.ConversationTurn{
		Id:             t.Id,
		ConversationId: conversationId,
		Position:       position,
		Role:           string(t.Role),
		Content:        t.Content,
		Meta:           meta,
		CreatedAt:      t.CreatedAt,
		Citations:      citations,
	}
}

func (m *ConversationMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}

	citations := append([]model.TurnCitation(nil), t.Citations...)
	sort.SliceStable(citations, func(i, j int) bool { return citations[i].Position < citations[j].Position })

	cited := make([]uuid.UUID, len(citations))
	for i, c := range citations {
		cited[i] = c.ChunkId
	}

	var meta map[string]interface{}
	if t.Meta != nil {
		meta = map[string]interface{}(t.Meta)
	}

	return &entity.ConversationTurn{
		Id:            t.Id,
		Role:          entity.TurnRole(t.Role),
		Content:       t.Content,
		CitedChunkIds: cited,
		Meta:          meta,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *ConversationMapper) TurnsToEntities(turns []*model.ConversationTurn) []*entity.ConversationTurn {
	entities := make([]*entity.ConversationTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.TurnToEntity(t)
	}
	return entities
}
