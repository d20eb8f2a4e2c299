package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"chatdoc-be/internal/entity"
	"chatdoc-be/pkg/apperror"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type chunkRepository struct {
	uow *UnitOfWork
}

type chunkIdentity struct {
	batchId string
	index   int
}

func loadChunks(t *tables, key string) []entity.Chunk {
	if x, found := t.chunks.Get(key); found {
		return x.([]entity.Chunk)
	}
	return nil
}

func (r *chunkRepository) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return r.uow.write(func(t *tables) error {
		grouped := make(map[string][]entity.Chunk)
		seen := make(map[string]map[chunkIdentity]bool)
		assigned := make([]entity.Chunk, len(chunks))
		now := time.Now()

		for i, c := range chunks {
			key := scopeKey(c.OwnerId, c.DocumentId)
			if _, ok := seen[key]; !ok {
				seen[key] = make(map[chunkIdentity]bool)
				for _, existing := range loadChunks(t, key) {
					seen[key][chunkIdentity{existing.BatchId, existing.Index}] = true
				}
			}
			id := chunkIdentity{c.BatchId, c.Index}
			if seen[key][id] {
				return fmt.Errorf("%w: chunk %s#%d", apperror.ErrDuplicateKey, c.BatchId, c.Index)
			}
			seen[key][id] = true

			stored := *c
			if stored.Id == uuid.Nil {
				stored.Id = uuid.New()
			}
			if stored.CreatedAt.IsZero() {
				stored.CreatedAt = now
			}
			if c.Embedding != nil {
				stored.Embedding = append([]float32(nil), c.Embedding...)
			}
			assigned[i] = stored
			grouped[key] = append(grouped[key], stored)
		}

		// nothing is written until every chunk passed the identity check
		for key, added := range grouped {
			existing := loadChunks(t, key)
			merged := make([]entity.Chunk, 0, len(existing)+len(added))
			merged = append(merged, existing...)
			merged = append(merged, added...)
			t.chunks.Set(key, merged, cache.NoExpiration)
		}

		for i, c := range chunks {
			c.Id = assigned[i].Id
			c.CreatedAt = assigned[i].CreatedAt
		}
		return nil
	})
}

func (r *chunkRepository) FindEmbedded(ctx context.Context, ownerId, documentId uuid.UUID, batchId string) ([]*entity.Chunk, error) {
	var out []*entity.Chunk
	for _, c := range loadChunks(r.uow.read(), scopeKey(ownerId, documentId)) {
		if !c.HasEmbedding() {
			continue
		}
		if batchId != "" && c.BatchId != batchId {
			continue
		}
		c := c
		out = append(out, &c)
	}
	if len(out) == 0 {
		return nil, apperror.NoEmbeddedChunks()
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.BatchId != b.BatchId {
			return a.BatchId < b.BatchId
		}
		return a.Index < b.Index
	})
	return out, nil
}

func (r *chunkRepository) ListBatches(ctx context.Context, ownerId, documentId uuid.UUID) ([]entity.BatchSummary, error) {
	byBatch := make(map[string]*entity.BatchSummary)
	for _, c := range loadChunks(r.uow.read(), scopeKey(ownerId, documentId)) {
		s, ok := byBatch[c.BatchId]
		if !ok {
			s = &entity.BatchSummary{BatchId: c.BatchId, CreatedAt: c.CreatedAt}
			byBatch[c.BatchId] = s
		}
		s.ChunkCount++
		if c.CreatedAt.Before(s.CreatedAt) {
			s.CreatedAt = c.CreatedAt
		}
	}

	out := make([]entity.BatchSummary, 0, len(byBatch))
	for _, s := range byBatch {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].BatchId < out[j].BatchId
	})
	return out, nil
}

func (r *chunkRepository) DeleteByDocument(ctx context.Context, ownerId, documentId uuid.UUID) (int64, error) {
	var removed int64
	err := r.uow.write(func(t *tables) error {
		key := scopeKey(ownerId, documentId)
		removed = int64(len(loadChunks(t, key)))
		t.chunks.Delete(key)
		return nil
	})
	return removed, err
}
