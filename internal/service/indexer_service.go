package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/events"
	"chatdoc-be/pkg/extractor"
	"chatdoc-be/pkg/rag/gateway"
	"chatdoc-be/pkg/tokenizer"
	"chatdoc-be/pkg/utils"

	"github.com/google/uuid"
)

type IIndexerService interface {
	Index(ctx context.Context, userId, documentId uuid.UUID) (*dto.IndexResponse, error)
	ListBatches(ctx context.Context, userId, documentId uuid.UUID) ([]dto.BatchResponse, error)
}

type IndexerOptions struct {
	UploadDir      string
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
}

type indexerService struct {
	uowFactory unitofwork.RepositoryFactory
	extractor  extractor.Extractor
	gateway    *gateway.Gateway
	estimator  tokenizer.Estimator
	opts       IndexerOptions
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
}

func NewIndexerService(
	uowFactory unitofwork.RepositoryFactory,
	extractor extractor.Extractor,
	gateway *gateway.Gateway,
	estimator tokenizer.Estimator,
	opts IndexerOptions,
	publisher IPublisherService,
	logger logger.ILogger,
) IIndexerService {
	return &indexerService{
		uowFactory: uowFactory,
		extractor:  extractor,
		gateway:    gateway,
		estimator:  estimator,
		opts:       opts,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewBatchId returns "<unixmillis>-<6 random base36 chars>".
func NewBatchId(at time.Time) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("%d-%s", at.UnixMilli(), suffix), nil
}

func (s *indexerService) Index(ctx context.Context, userId, documentId uuid.UUID) (*dto.IndexResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Resolve the document
	doc, err := uow.DocumentRepository().FindOne(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFoundError("document", "Document not found")
	}

	diskPath, err := filepath.Abs(filepath.Join(s.opts.UploadDir, userId.String(), doc.Filename))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(diskPath); err != nil {
		return nil, apperror.NewNotFoundError("file", "File not found on disk")
	}

	// 2. Extract and split
	text, err := s.extractor.Extract(ctx, diskPath)
	if err != nil {
		return nil, err
	}

	pieces, err := utils.SplitText(text, s.opts.ChunkSize, s.opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	batchId, err := NewBatchId(s.now())
	if err != nil {
		return nil, err
	}

	if len(pieces) == 0 {
		s.logger.Warn("INDEXER", "Document produced no text", map[string]interface{}{
			"document_id": documentId.String(),
		})
		return &dto.IndexResponse{DocumentId: documentId, BatchId: batchId, Chunks: 0}, nil
	}

	// 3. Embed every piece before anything is written
	vectors, err := s.gateway.EmbedBatches(ctx, pieces, s.opts.EmbedBatchSize)
	if err != nil {
		s.logger.Error("INDEXER", "Embedding failed", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
		return nil, err
	}

	createdAt := s.now()
	chunks := make([]*entity.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &entity.Chunk{
			Id:               uuid.New(),
			OwnerId:          userId,
			DocumentId:       documentId,
			BatchId:          batchId,
			Index:            i,
			Text:             piece,
			Embedding:        vectors[i],
			ApproxTokenCount: s.estimator.CountTokens(piece),
			CreatedAt:        createdAt,
		}
	}

	// 4. Persist the batch
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("INDEXER", "Document indexed", map[string]interface{}{
		"document_id": documentId.String(),
		"batch_id":    batchId,
		"chunks":      len(chunks),
		"model":       s.gateway.Model(),
	})

	publishEvent(ctx, s.publisher, s.logger, events.DocumentIndexed, map[string]interface{}{
		"user_id":     userId.String(),
		"document_id": documentId.String(),
		"batch_id":    batchId,
		"chunks":      len(chunks),
	})

	return &dto.IndexResponse{DocumentId: documentId, BatchId: batchId, Chunks: len(chunks)}, nil
}

func (s *indexerService) ListBatches(ctx context.Context, userId, documentId uuid.UUID) ([]dto.BatchResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	batches, err := uow.ChunkRepository().ListBatches(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}

	res := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		res = append(res, dto.BatchResponse{BatchId: b.BatchId, ChunkCount: b.ChunkCount, CreatedAt: b.CreatedAt})
	}
	return res, nil
}
