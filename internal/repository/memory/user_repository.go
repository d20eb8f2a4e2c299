package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatdoc-be/internal/entity"
	"chatdoc-be/pkg/apperror"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type userRepository struct {
	uow *UnitOfWork
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.uow.write(func(t *tables) error {
		for _, item := range t.users.Items() {
			existing := item.Object.(entity.User)
			if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
				return fmt.Errorf("%w: user %s", apperror.ErrDuplicateKey, user.Email)
			}
		}
		if user.Id == uuid.Nil {
			user.Id = uuid.New()
		}
		now := time.Now()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		t.users.Set(user.Id.String(), *user, cache.NoExpiration)
		return nil
	})
}

func (r *userRepository) find(match func(u entity.User) bool) *entity.User {
	for _, item := range r.uow.read().users.Items() {
		u := item.Object.(entity.User)
		if match(u) {
			return &u
		}
	}
	return nil
}

func (r *userRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if x, found := r.uow.read().users.Get(id.String()); found {
		u := x.(entity.User)
		return &u, nil
	}
	return nil, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username }), nil
}
