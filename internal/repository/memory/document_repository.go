package memory

import (
	"context"
	"sort"
	"time"

	"chatdoc-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type documentRepository struct {
	uow *UnitOfWork
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	return r.uow.write(func(t *tables) error {
		if doc.Id == uuid.Nil {
			doc.Id = uuid.New()
		}
		if doc.UploadedAt.IsZero() {
			doc.UploadedAt = time.Now()
		}
		t.documents.Set(doc.Id.String(), *doc, cache.NoExpiration)
		return nil
	})
}

func (r *documentRepository) FindOne(ctx context.Context, ownerId, id uuid.UUID) (*entity.Document, error) {
	x, found := r.uow.read().documents.Get(id.String())
	if !found {
		return nil, nil
	}
	doc := x.(entity.Document)
	if doc.UserId != ownerId {
		return nil, nil
	}
	return &doc, nil
}

func (r *documentRepository) FindAllByOwner(ctx context.Context, ownerId uuid.UUID) ([]*entity.Document, error) {
	out := make([]*entity.Document, 0)
	for _, item := range r.uow.read().documents.Items() {
		doc := item.Object.(entity.Document)
		if doc.UserId == ownerId {
			out = append(out, &doc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (r *documentRepository) Delete(ctx context.Context, ownerId, id uuid.UUID) error {
	return r.uow.write(func(t *tables) error {
		if x, found := t.documents.Get(id.String()); found && x.(entity.Document).UserId == ownerId {
			t.documents.Delete(id.String())
		}
		return nil
	})
}
