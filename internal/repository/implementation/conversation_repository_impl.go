package implementation

import (
	"context"
	"errors"
	"time"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/mapper"
	"chatdoc-be/internal/model"
	"chatdoc-be/internal/repository/contract"
	"chatdoc-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func ownedConversation(db *gorm.DB, ownerId, documentId uuid.UUID) *gorm.DB {
	return specification.ApplyAll(db,
		specification.UserOwnedBy{UserID: ownerId},
		specification.ByDocumentID{DocumentID: documentId},
	)
}

func (r *ConversationRepositoryImpl) AppendTurns(ctx context.Context, ownerId, documentId uuid.UUID, turns []*entity.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		upsert := model.Conversation{
			Id:         uuid.New(),
			UserId:     ownerId,
			DocumentId: documentId,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "document_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": now}),
		}).Omit("Turns").Create(&upsert).Error
		if err != nil {
			return translate(err)
		}

		// row lock serializes concurrent appends to the same conversation
		var conv model.Conversation
		if err := ownedConversation(tx.Clauses(clause.Locking{Strength: "UPDATE"}), ownerId, documentId).
			First(&conv).Error; err != nil {
			return err
		}

		var last struct{ Max *int }
		if err := tx.Model(&model.ConversationTurn{}).
			Select("MAX(position) AS max").
			Where("conversation_id = ?", conv.Id).
			Scan(&last).Error; err != nil {
			return err
		}
		next := 0
		if last.Max != nil {
			next = *last.Max + 1
		}

		rows := make([]*model.ConversationTurn, len(turns))
		for i, t := range turns {
			if t.Id == uuid.Nil {
				t.Id = uuid.New()
			}
			if t.CreatedAt.IsZero() {
				t.CreatedAt = now
			}
			rows[i] = r.mapper.TurnToModel(conv.Id, next+i, t)
		}

		return translate(tx.Create(&rows).Error)
	})
}

func (r *ConversationRepositoryImpl) FindTurns(ctx context.Context, ownerId, documentId uuid.UUID) ([]*entity.ConversationTurn, error) {
	var conv model.Conversation
	err := ownedConversation(r.db.WithContext(ctx), ownerId, documentId).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*entity.ConversationTurn{}, nil
		}
		return nil, err
	}

	var rows []*model.ConversationTurn
	if err := r.db.WithContext(ctx).
		Preload("Citations").
		Where("conversation_id = ?", conv.Id).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return r.mapper.TurnsToEntities(rows), nil
}

func (r *ConversationRepositoryImpl) Delete(ctx context.Context, ownerId, documentId uuid.UUID) (bool, error) {
	// turns and citations go with it through ON DELETE CASCADE
	res := ownedConversation(r.db.WithContext(ctx), ownerId, documentId).Delete(&model.Conversation{})
	return res.RowsAffected > 0, res.Error
}
