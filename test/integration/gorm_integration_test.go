package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/model"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.EnableExtensions(db))
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedOwner(t *testing.T, ctx context.Context, uow unitofwork.UnitOfWork) (*entity.User, *entity.Document) {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &entity.User{
		Id:           uuid.New(),
		Email:        "it-" + suffix + "@example.com",
		Username:     "it-" + suffix,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	doc := &entity.Document{
		Id:           uuid.New(),
		UserId:       user.Id,
		OriginalName: "policy.pdf",
		Filename:     "1-policy.pdf",
		Path:         "/uploads/" + user.Id.String() + "/1-policy.pdf",
		Size:         10,
		UploadedAt:   time.Now(),
	}
	require.NoError(t, uow.DocumentRepository().Create(ctx, doc))
	return user, doc
}

func TestGormChunkStore(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	user, doc := seedOwner(t, ctx, uow)
	t.Cleanup(func() {
		_, _ = uow.ChunkRepository().DeleteByDocument(ctx, user.Id, doc.Id)
		_ = uow.DocumentRepository().Delete(ctx, user.Id, doc.Id)
	})

	chunks := []*entity.Chunk{
		{OwnerId: user.Id, DocumentId: doc.Id, BatchId: "it-batch", Index: 0, Text: "a", Embedding: []float32{1, 0}},
		{OwnerId: user.Id, DocumentId: doc.Id, BatchId: "it-batch", Index: 1, Text: "b", Embedding: []float32{0, 1}},
		{OwnerId: user.Id, DocumentId: doc.Id, BatchId: "it-batch", Index: 2, Text: "c"},
	}
	require.NoError(t, uow.ChunkRepository().CreateBulk(ctx, chunks))
	assert.NotEqual(t, uuid.Nil, chunks[0].Id)

	t.Run("only embedded chunks are returned", func(t *testing.T) {
		found, err := uow.ChunkRepository().FindEmbedded(ctx, user.Id, doc.Id, "")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, []float32{1, 0}, found[0].Embedding)
	})

	t.Run("duplicate identity is rejected", func(t *testing.T) {
		err := uow.ChunkRepository().CreateBulk(ctx, []*entity.Chunk{
			{OwnerId: user.Id, DocumentId: doc.Id, BatchId: "it-batch", Index: 0, Text: "dup", Embedding: []float32{1, 1}},
		})
		assert.ErrorIs(t, err, apperror.ErrDuplicateKey)
	})

	t.Run("batches", func(t *testing.T) {
		batches, err := uow.ChunkRepository().ListBatches(ctx, user.Id, doc.Id)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, 3, batches[0].ChunkCount)
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := uow.ChunkRepository().FindEmbedded(ctx, uuid.New(), doc.Id, "")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestGormConversationLog(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	user, doc := seedOwner(t, ctx, uow)
	t.Cleanup(func() {
		_, _ = uow.ConversationRepository().Delete(ctx, user.Id, doc.Id)
		_ = uow.DocumentRepository().Delete(ctx, user.Id, doc.Id)
	})

	cited := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, uow.ConversationRepository().AppendTurns(ctx, user.Id, doc.Id, []*entity.ConversationTurn{
		{Role: entity.TurnRoleUser, Content: "q", CitedChunkIds: cited},
		{Role: entity.TurnRoleAssistant, Content: "a", CitedChunkIds: cited, Meta: map[string]interface{}{"top_n": 8}},
	}))

	turns, err := uow.ConversationRepository().FindTurns(ctx, user.Id, doc.Id)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "q", turns[0].Content)
	assert.Equal(t, cited, turns[1].CitedChunkIds)

	deleted, err := uow.ConversationRepository().Delete(ctx, user.Id, doc.Id)
	require.NoError(t, err)
	assert.True(t, deleted)

	turns, err = uow.ConversationRepository().FindTurns(ctx, user.Id, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
