package history

import (
	"context"
	"testing"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/repository/memory"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationLog_AppendRead(t *testing.T) {
	ctx := context.Background()
	log := NewConversationLog(memory.NewRepositoryFactory(memory.NewStore()))
	owner, doc := uuid.New(), uuid.New()
	cited := []uuid.UUID{uuid.New(), uuid.New()}

	require.NoError(t, log.Append(ctx, owner, doc,
		&entity.ConversationTurn{Role: entity.TurnRoleUser, Content: "q?", CitedChunkIds: cited},
		&entity.ConversationTurn{Role: entity.TurnRoleAssistant, Content: "a.", CitedChunkIds: cited},
	))

	turns, err := log.Read(ctx, owner, doc)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.TurnRoleUser, turns[0].Role)
	assert.Equal(t, entity.TurnRoleAssistant, turns[1].Role)
	assert.Equal(t, cited, turns[1].CitedChunkIds)

	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "q?"},
		{Role: llm.RoleAssistant, Content: "a."},
	}, ToMessages(turns))
}

func TestConversationLog_ReadMissingIsEmpty(t *testing.T) {
	log := NewConversationLog(memory.NewRepositoryFactory(memory.NewStore()))

	turns, err := log.Read(context.Background(), uuid.New(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestConversationLog_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	log := NewConversationLog(memory.NewRepositoryFactory(memory.NewStore()))
	owner, doc := uuid.New(), uuid.New()

	require.NoError(t, log.Clear(ctx, owner, doc))

	require.NoError(t, log.Append(ctx, owner, doc, &entity.ConversationTurn{Role: entity.TurnRoleUser, Content: "q"}))
	require.NoError(t, log.Clear(ctx, owner, doc))

	turns, err := log.Read(ctx, owner, doc)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestConversationLog_InvalidRoleWritesNothing(t *testing.T) {
	ctx := context.Background()
	log := NewConversationLog(memory.NewRepositoryFactory(memory.NewStore()))
	owner, doc := uuid.New(), uuid.New()

	err := log.Append(ctx, owner, doc,
		&entity.ConversationTurn{Role: entity.TurnRoleUser, Content: "q"},
		&entity.ConversationTurn{Role: "robot", Content: "a"},
	)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	turns, _ := log.Read(ctx, owner, doc)
	assert.Empty(t, turns)
}

func TestConversationLog_ScopedByOwnerAndDocument(t *testing.T) {
	ctx := context.Background()
	log := NewConversationLog(memory.NewRepositoryFactory(memory.NewStore()))
	owner, doc := uuid.New(), uuid.New()

	require.NoError(t, log.Append(ctx, owner, doc, &entity.ConversationTurn{Role: entity.TurnRoleUser, Content: "q"}))

	other, err := log.Read(ctx, uuid.New(), doc)
	require.NoError(t, err)
	assert.Empty(t, other)

	otherDoc, err := log.Read(ctx, owner, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, otherDoc)
}
