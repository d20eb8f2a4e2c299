package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/internal/repository/memory"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/events"
	"chatdoc-be/pkg/rag/gateway"
	"chatdoc-be/pkg/rag/history"
	"chatdoc-be/pkg/rag/response"
	"chatdoc-be/pkg/rag/retriever"
	"chatdoc-be/pkg/tokenizer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two windows of exactly 20 runes each.
const policyText = "refund refund refund" + "shipping takes weeks"

type pipeline struct {
	factory   unitofwork.RepositoryFactory
	uploadDir string
	embedder  *keywordEmbedder
	llm       *fakeLLM
	extractor *fakeExtractor
	publisher *recordingPublisher
	documents IDocumentService
	indexer   IIndexerService
	chat      IChatService
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	p := &pipeline{
		factory:   memory.NewRepositoryFactory(memory.NewStore()),
		uploadDir: t.TempDir(),
		embedder:  &keywordEmbedder{},
		llm:       &fakeLLM{answer: "Refunds are issued [Chunk 1]."},
		extractor: &fakeExtractor{text: policyText},
		publisher: &recordingPublisher{},
	}
	log := logger.NewNopLogger()
	gw := gateway.New(p.embedder)

	p.documents = NewDocumentService(p.factory, p.uploadDir, p.publisher, log)
	p.indexer = NewIndexerService(p.factory, p.extractor, gw, tokenizer.CharEstimator{}, IndexerOptions{
		UploadDir:      p.uploadDir,
		ChunkSize:      20,
		ChunkOverlap:   0,
		EmbedBatchSize: 1,
	}, p.publisher, log)
	p.chat = NewChatService(
		retriever.New(gw, p.factory, retriever.Options{}),
		response.NewGenerator(p.llm, log),
		history.NewConversationLog(p.factory),
		p.publisher,
		log,
	)
	return p
}

func (p *pipeline) upload(t *testing.T, userId uuid.UUID) dto.DocumentResponse {
	t.Helper()
	res, err := p.documents.Upload(context.Background(), userId, []dto.UploadFile{
		{OriginalName: "refund policy.pdf", ContentType: "application/pdf", Content: strings.NewReader("%PDF-1.4")},
	})
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	return res.Documents[0]
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return at
}

func TestStoredFilename(t *testing.T) {
	at := mustTime(t, "2024-05-01T10:00:00Z")
	assert.Equal(t, "1714557600000-my_annual_report.pdf", StoredFilename("my annual \t report.pdf", at))
	assert.Equal(t, "1714557600000-a.pdf", StoredFilename("../../a.pdf", at))
}

func TestNewBatchId_Format(t *testing.T) {
	id, err := NewBatchId(mustTime(t, "2024-05-01T10:00:00Z"))
	require.NoError(t, err)
	assert.Regexp(t, `^1714557600000-[0-9a-z]{6}$`, id)
}

func TestDocumentService_Upload(t *testing.T) {
	p := newPipeline(t)
	userId := uuid.New()

	res, err := p.documents.Upload(context.Background(), userId, []dto.UploadFile{
		{OriginalName: "notes.txt", ContentType: "text/plain", Content: strings.NewReader("x")},
		{OriginalName: "guide.PDF", Content: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, []string{"notes.txt"}, res.Skipped)

	doc := res.Documents[0]
	assert.True(t, strings.HasPrefix(doc.Path, "/uploads/"+userId.String()+"/"))
	assert.EqualValues(t, 4, doc.Size)
	_, err = os.Stat(filepath.Join(p.uploadDir, userId.String(), doc.Filename))
	assert.NoError(t, err)

	listed, err := p.documents.List(context.Background(), userId)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, []string{events.DocumentUploaded}, p.publisher.types())
}

func TestDocumentService_Upload_Rejects(t *testing.T) {
	p := newPipeline(t)

	_, err := p.documents.Upload(context.Background(), uuid.New(), []dto.UploadFile{
		{OriginalName: "notes.txt", ContentType: "text/plain", Content: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	tooMany := make([]dto.UploadFile, MaxFilesPerUpload+1)
	for i := range tooMany {
		tooMany[i] = dto.UploadFile{OriginalName: "a.pdf", Content: strings.NewReader("")}
	}
	_, err = p.documents.Upload(context.Background(), uuid.New(), tooMany)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestIndexThenQuery(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)

	indexed, err := p.indexer.Index(ctx, userId, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed.Chunks)
	assert.NotEmpty(t, indexed.BatchId)
	assert.Equal(t, 2, p.embedder.calls, "batch size 1 means one call per chunk")

	res, err := p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund?"})
	require.NoError(t, err)

	assert.Equal(t, "Refunds are issued [Chunk 1].", res.Answer)
	require.Len(t, res.RankedChunks, 2)
	assert.Equal(t, "refund refund refund", res.RankedChunks[0].Text)
	assert.InDelta(t, 1.0, res.RankedChunks[0].Score, 1e-6)
	assert.InDelta(t, 0.0, res.RankedChunks[1].Score, 1e-6)

	require.Len(t, res.History, 2)
	assert.Equal(t, "user", res.History[0].Role)
	assert.Equal(t, "refund?", res.History[0].Content)
	assert.Equal(t, "assistant", res.History[1].Role)
	wantCited := []uuid.UUID{res.RankedChunks[0].ChunkId, res.RankedChunks[1].ChunkId}
	assert.Equal(t, wantCited, res.History[0].CitedChunkIds)
	assert.Equal(t, wantCited, res.History[1].CitedChunkIds)

	batches, err := p.indexer.ListBatches(ctx, userId, doc.Id)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, indexed.BatchId, batches[0].BatchId)
	assert.Equal(t, 2, batches[0].ChunkCount)

	assert.Equal(t, []string{events.DocumentUploaded, events.DocumentIndexed, events.ChatQueried}, p.publisher.types())
}

func TestQuery_TopNLimitsResults(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)
	_, err := p.indexer.Index(ctx, userId, doc.Id)
	require.NoError(t, err)

	res, err := p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "ship", TopN: 1})
	require.NoError(t, err)
	require.Len(t, res.RankedChunks, 1)
	assert.Equal(t, "shipping takes weeks", res.RankedChunks[0].Text)
	assert.EqualValues(t, 1, res.History[1].Meta["top_n"])
}

func TestQuery_NotIndexedStopsBeforeCompletion(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)

	_, err := p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund?"})

	var nf *apperror.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Error(), "re-index")
	assert.Equal(t, 0, p.llm.calls)

	hist, err := p.chat.History(ctx, userId, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, hist.Turns)
}

func TestQuery_OtherOwnerSeesNothing(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	owner := uuid.New()
	doc := p.upload(t, owner)
	_, err := p.indexer.Index(ctx, owner, doc.Id)
	require.NoError(t, err)

	_, err = p.chat.Query(ctx, uuid.New(), &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund?"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestQuery_ProviderErrorPersistsNothing(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)
	_, err := p.indexer.Index(ctx, userId, doc.Id)
	require.NoError(t, err)

	p.llm.err = apperror.NewProviderError("azure-chat", 503, "busy")
	_, err = p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund?"})

	var perr *apperror.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 503, perr.Status)

	hist, err := p.chat.History(ctx, userId, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, hist.Turns)
}

func TestIndex_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown document", func(t *testing.T) {
		p := newPipeline(t)
		_, err := p.indexer.Index(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("file missing on disk", func(t *testing.T) {
		p := newPipeline(t)
		userId := uuid.New()
		doc := p.upload(t, userId)
		require.NoError(t, os.Remove(filepath.Join(p.uploadDir, userId.String(), doc.Filename)))

		_, err := p.indexer.Index(ctx, userId, doc.Id)
		var nf *apperror.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "File not found on disk", nf.Error())
	})

	t.Run("extraction error", func(t *testing.T) {
		p := newPipeline(t)
		userId := uuid.New()
		doc := p.upload(t, userId)
		p.extractor.err = &apperror.ExtractionError{ExitCode: 2, Diagnostic: "broken xref"}

		_, err := p.indexer.Index(ctx, userId, doc.Id)
		assert.ErrorIs(t, err, apperror.ErrExtraction)
		assert.Equal(t, 0, p.embedder.calls)
	})

	t.Run("embedding error writes nothing", func(t *testing.T) {
		p := newPipeline(t)
		userId := uuid.New()
		doc := p.upload(t, userId)
		p.embedder.err = apperror.NewProviderError("keyword", 429, "slow down")

		_, err := p.indexer.Index(ctx, userId, doc.Id)
		assert.ErrorIs(t, err, apperror.ErrProvider)

		batches, err := p.indexer.ListBatches(ctx, userId, doc.Id)
		require.NoError(t, err)
		assert.Empty(t, batches)
	})

	t.Run("empty text", func(t *testing.T) {
		p := newPipeline(t)
		userId := uuid.New()
		doc := p.upload(t, userId)
		p.extractor.text = ""

		res, err := p.indexer.Index(ctx, userId, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Chunks)
		assert.Equal(t, 0, p.embedder.calls)
	})
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)
	_, err := p.indexer.Index(ctx, userId, doc.Id)
	require.NoError(t, err)
	_, err = p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund?"})
	require.NoError(t, err)

	require.NoError(t, p.chat.ClearHistory(ctx, userId, doc.Id))
	require.NoError(t, p.chat.ClearHistory(ctx, userId, doc.Id))

	hist, err := p.chat.History(ctx, userId, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, hist.Turns)

	// chunks survive a cleared conversation
	res, err := p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund?"})
	require.NoError(t, err)
	assert.Len(t, res.History, 2)
}

func TestQuery_TwoQueriesAppendInOrder(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)
	_, err := p.indexer.Index(ctx, userId, doc.Id)
	require.NoError(t, err)

	p.llm.answer = "Thirty days [Chunk 1]."
	_, err = p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "refund window?"})
	require.NoError(t, err)

	p.llm.answer = "A few weeks [Chunk 1]."
	_, err = p.chat.Query(ctx, userId, &dto.QueryRequest{DocumentId: doc.Id.String(), Query: "shipping time?"})
	require.NoError(t, err)

	hist, err := p.chat.History(ctx, userId, doc.Id)
	require.NoError(t, err)
	require.Len(t, hist.Turns, 4)

	want := []struct{ role, content string }{
		{"user", "refund window?"},
		{"assistant", "Thirty days [Chunk 1]."},
		{"user", "shipping time?"},
		{"assistant", "A few weeks [Chunk 1]."},
	}
	for i, w := range want {
		assert.Equal(t, w.role, hist.Turns[i].Role, "turn %d", i)
		assert.Equal(t, w.content, hist.Turns[i].Content, "turn %d", i)
	}

	require.NoError(t, p.chat.ClearHistory(ctx, userId, doc.Id))
	hist, err = p.chat.History(ctx, userId, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, hist.Turns)
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	userId := uuid.New()
	doc := p.upload(t, userId)
	_, err := p.indexer.Index(ctx, userId, doc.Id)
	require.NoError(t, err)

	_, err = p.documents.Delete(ctx, uuid.New(), doc.Id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	res, err := p.documents.Delete(ctx, userId, doc.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.ChunksDeleted)

	_, err = os.Stat(filepath.Join(p.uploadDir, userId.String(), doc.Filename))
	assert.True(t, os.IsNotExist(err))

	listed, err := p.documents.List(ctx, userId)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
