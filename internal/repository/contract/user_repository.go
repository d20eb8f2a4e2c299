package contract

import (
	"context"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
)

// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
