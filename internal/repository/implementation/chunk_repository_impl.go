package implementation

import (
	"context"
	"time"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/mapper"
	"chatdoc-be/internal/model"
	"chatdoc-be/internal/repository/contract"
	"chatdoc-be/internal/repository/specification"
	"chatdoc-be/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const chunkInsertBatch = 200

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)

	// CreateInBatches runs inside its own transaction (or a savepoint of the caller's).
	if err := r.db.WithContext(ctx).CreateInBatches(models, chunkInsertBatch).Error; err != nil {
		return translate(err)
	}

	for i, m := range models {
		chunks[i].Id = m.Id
		chunks[i].CreatedAt = m.CreatedAt
	}
	return nil
}

func (r *ChunkRepositoryImpl) FindEmbedded(ctx context.Context, ownerId, documentId uuid.UUID, batchId string) ([]*entity.Chunk, error) {
	var models []*model.Chunk

	query := specification.ApplyAll(
		r.db.WithContext(ctx).
			Model(&model.Chunk{}).
			Select("id", "user_id", "document_id", "batch_id", "chunk_index", "text", "embedding", "created_at"),
		specification.UserOwnedBy{UserID: ownerId},
		specification.ByDocumentID{DocumentID: documentId},
		specification.ByBatchID{BatchID: batchId},
		specification.HasEmbedding{},
		specification.OriginalChunkOrder{},
	)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, apperror.NoEmbeddedChunks()
	}

	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) ListBatches(ctx context.Context, ownerId, documentId uuid.UUID) ([]entity.BatchSummary, error) {
	var rows []struct {
		BatchId    string
		ChunkCount int
		CreatedAt  time.Time
	}

	err := specification.ApplyAll(
		r.db.WithContext(ctx).
			Model(&model.Chunk{}).
			Select("batch_id, COUNT(*) AS chunk_count, MIN(created_at) AS created_at"),
		specification.UserOwnedBy{UserID: ownerId},
		specification.ByDocumentID{DocumentID: documentId},
	).
		Group("batch_id").
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.BatchSummary, len(rows))
	for i, row := range rows {
		out[i] = entity.BatchSummary{BatchId: row.BatchId, ChunkCount: row.ChunkCount, CreatedAt: row.CreatedAt}
	}
	return out, nil
}

func (r *ChunkRepositoryImpl) DeleteByDocument(ctx context.Context, ownerId, documentId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND document_id = ?", ownerId, documentId).
		Delete(&model.Chunk{})
	return res.RowsAffected, res.Error
}
