package history

import (
	"context"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/llm"

	"github.com/google/uuid"
)

// ConversationLog records the dialogue between an owner and one document.
type ConversationLog struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationLog(uowFactory unitofwork.RepositoryFactory) *ConversationLog {
	return &ConversationLog{uowFactory: uowFactory}
}

// Append stores all turns after the existing ones in one transaction.
// Either every turn is visible afterwards or none is.
func (l *ConversationLog) Append(ctx context.Context, ownerId, documentId uuid.UUID, turns ...*entity.ConversationTurn) error {
	for _, t := range turns {
		if !t.Role.Valid() {
			return apperror.InvalidInput("unknown turn role %q", t.Role)
		}
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().AppendTurns(ctx, ownerId, documentId, turns); err != nil {
		return err
	}

	return uow.Commit()
}

// Read returns turns in insertion order. A conversation that was never
// started reads as empty.
func (l *ConversationLog) Read(ctx context.Context, ownerId, documentId uuid.UUID) ([]*entity.ConversationTurn, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationRepository().FindTurns(ctx, ownerId, documentId)
}

// Clear deletes the conversation. Clearing a missing conversation succeeds.
func (l *ConversationLog) Clear(ctx context.Context, ownerId, documentId uuid.UUID) error {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	_, err := uow.ConversationRepository().Delete(ctx, ownerId, documentId)
	return err
}

// ToMessages converts stored turns into provider messages.
func ToMessages(turns []*entity.ConversationTurn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	return messages
}
