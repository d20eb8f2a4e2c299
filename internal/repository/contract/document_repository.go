package contract

import (
	"context"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	// FindOne returns (nil, nil) when the document does not exist for this owner.
	FindOne(ctx context.Context, ownerId, id uuid.UUID) (*entity.Document, error)
	FindAllByOwner(ctx context.Context, ownerId uuid.UUID) ([]*entity.Document, error)
	Delete(ctx context.Context, ownerId, id uuid.UUID) error
}
