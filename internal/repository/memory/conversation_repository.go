package memory

import (
	"context"
	"time"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type conversationRepository struct {
	uow *UnitOfWork
}

func loadTurns(t *tables, key string) []entity.ConversationTurn {
	if x, found := t.conversations.Get(key); found {
		return x.([]entity.ConversationTurn)
	}
	return nil
}

func copyTurn(turn entity.ConversationTurn) entity.ConversationTurn {
	if turn.CitedChunkIds != nil {
		turn.CitedChunkIds = append([]uuid.UUID(nil), turn.CitedChunkIds...)
	}
	if turn.Meta != nil {
		meta := make(map[string]interface{}, len(turn.Meta))
		for k, v := range turn.Meta {
			meta[k] = v
		}
		turn.Meta = meta
	}
	return turn
}

func (r *conversationRepository) AppendTurns(ctx context.Context, ownerId, documentId uuid.UUID, turns []*entity.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	return r.uow.write(func(t *tables) error {
		key := scopeKey(ownerId, documentId)
		existing := loadTurns(t, key)
		merged := make([]entity.ConversationTurn, 0, len(existing)+len(turns))
		merged = append(merged, existing...)

		now := time.Now()
		for _, turn := range turns {
			if turn.Id == uuid.Nil {
				turn.Id = uuid.New()
			}
			if turn.CreatedAt.IsZero() {
				turn.CreatedAt = now
			}
			merged = append(merged, copyTurn(*turn))
		}

		t.conversations.Set(key, merged, cache.NoExpiration)
		return nil
	})
}

func (r *conversationRepository) FindTurns(ctx context.Context, ownerId, documentId uuid.UUID) ([]*entity.ConversationTurn, error) {
	stored := loadTurns(r.uow.read(), scopeKey(ownerId, documentId))
	out := make([]*entity.ConversationTurn, len(stored))
	for i := range stored {
		turn := copyTurn(stored[i])
		out[i] = &turn
	}
	return out, nil
}

func (r *conversationRepository) Delete(ctx context.Context, ownerId, documentId uuid.UUID) (bool, error) {
	var existed bool
	err := r.uow.write(func(t *tables) error {
		key := scopeKey(ownerId, documentId)
		_, existed = t.conversations.Get(key)
		t.conversations.Delete(key)
		return nil
	})
	return existed, err
}
