package service

import (
	"context"
	"strings"
	"time"

	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/events"
	"chatdoc-be/pkg/rag/history"
	"chatdoc-be/pkg/rag/response"
	"chatdoc-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

type IChatService interface {
	Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)
	History(ctx context.Context, userId, documentId uuid.UUID) (*dto.HistoryResponse, error)
	ClearHistory(ctx context.Context, userId, documentId uuid.UUID) error
}

type chatService struct {
	retriever *retriever.Retriever
	generator *response.Generator
	log       *history.ConversationLog
	publisher IPublisherService
	logger    logger.ILogger
	now       func() time.Time
}

func NewChatService(
	retriever *retriever.Retriever,
	generator *response.Generator,
	log *history.ConversationLog,
	publisher IPublisherService,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		retriever: retriever,
		generator: generator,
		log:       log,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *chatService) Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	documentId, err := uuid.Parse(req.DocumentId)
	if err != nil {
		return nil, apperror.InvalidInput("document_id must be a uuid")
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperror.InvalidInput("query must not be empty")
	}

	// 1. Retrieve; a document without embedded chunks stops here
	opts := retriever.Options{
		TopN:            req.TopN,
		RestrictToBatch: req.BatchId,
	}
	ranked, err := s.retriever.Retrieve(ctx, userId, documentId, query, opts)
	if err != nil {
		return nil, err
	}

	// 2. Compose the grounded answer
	answer, err := s.generator.Compose(ctx, query, ranked)
	if err != nil {
		return nil, err
	}

	// 3. Record the exchange as one unit
	cited := retriever.ChunkIds(ranked)
	meta := map[string]interface{}{"top_n": s.retriever.Limit(opts)}
	if req.BatchId != "" {
		meta["batch_id"] = req.BatchId
	}
	now := s.now()
	turns := []*entity.ConversationTurn{
		{Id: uuid.New(), Role: entity.TurnRoleUser, Content: query, CitedChunkIds: cited, Meta: meta, CreatedAt: now},
		{Id: uuid.New(), Role: entity.TurnRoleAssistant, Content: answer, CitedChunkIds: cited, Meta: meta, CreatedAt: now},
	}
	if err := s.log.Append(ctx, userId, documentId, turns...); err != nil {
		return nil, err
	}

	stored, err := s.log.Read(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}

	s.logger.Info("CHAT", "Query answered", map[string]interface{}{
		"user_id":     userId.String(),
		"document_id": documentId.String(),
		"chunks":      len(ranked),
	})

	publishEvent(ctx, s.publisher, s.logger, events.ChatQueried, map[string]interface{}{
		"user_id":     userId.String(),
		"document_id": documentId.String(),
		"cited":       len(cited),
	})

	return &dto.QueryResponse{
		Answer:       answer,
		RankedChunks: toRankedResponses(ranked),
		History:      toTurnResponses(stored),
	}, nil
}

func (s *chatService) History(ctx context.Context, userId, documentId uuid.UUID) (*dto.HistoryResponse, error) {
	turns, err := s.log.Read(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}
	return &dto.HistoryResponse{DocumentId: documentId, Turns: toTurnResponses(turns)}, nil
}

func (s *chatService) ClearHistory(ctx context.Context, userId, documentId uuid.UUID) error {
	if err := s.log.Clear(ctx, userId, documentId); err != nil {
		return err
	}

	publishEvent(ctx, s.publisher, s.logger, events.HistoryCleared, map[string]interface{}{
		"user_id":     userId.String(),
		"document_id": documentId.String(),
	})
	return nil
}

func toRankedResponses(ranked []retriever.Ranked) []dto.RankedChunkResponse {
	res := make([]dto.RankedChunkResponse, 0, len(ranked))
	for _, r := range ranked {
		res = append(res, dto.RankedChunkResponse{
			ChunkId:    r.Chunk.Id,
			BatchId:    r.Chunk.BatchId,
			Index:      r.Chunk.Index,
			Text:       r.Chunk.Text,
			Score:      r.Score,
			Comparable: r.Comparable,
		})
	}
	return res
}

func toTurnResponses(turns []*entity.ConversationTurn) []dto.TurnResponse {
	res := make([]dto.TurnResponse, 0, len(turns))
	for _, t := range turns {
		cited := t.CitedChunkIds
		if cited == nil {
			cited = []uuid.UUID{}
		}
		res = append(res, dto.TurnResponse{
			Role:          string(t.Role),
			Content:       t.Content,
			CitedChunkIds: cited,
			Meta:          t.Meta,
			CreatedAt:     t.CreatedAt,
		})
	}
	return res
}
