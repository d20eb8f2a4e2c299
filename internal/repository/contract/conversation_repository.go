package contract

import (
	"context"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	// AppendTurns creates the conversation on first use and appends all
	// turns after the existing ones, as one unit.
	AppendTurns(ctx context.Context, ownerId, documentId uuid.UUID, turns []*entity.ConversationTurn) error

	// FindTurns returns turns in insertion order, or none when absent.
	FindTurns(ctx context.Context, ownerId, documentId uuid.UUID) ([]*entity.ConversationTurn, error)

	// Delete removes the conversation. It reports whether one existed.
	Delete(ctx context.Context, ownerId, documentId uuid.UUID) (bool, error)
}
