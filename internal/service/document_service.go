package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/events"

	"github.com/google/uuid"
)

const MaxFilesPerUpload = 20

var whitespace = regexp.MustCompile(`\s+`)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, files []dto.UploadFile) (*dto.UploadResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]dto.DocumentResponse, error)
	Delete(ctx context.Context, userId, documentId uuid.UUID) (*dto.DeleteDocumentResponse, error)
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	uploadDir  string
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, uploadDir string, publisher IPublisherService, logger logger.ILogger) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		uploadDir:  uploadDir,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func isPDF(f dto.UploadFile) bool {
	return f.ContentType == "application/pdf" || strings.EqualFold(filepath.Ext(f.OriginalName), ".pdf")
}

// StoredFilename builds "<unixmillis>-<base><ext>" with whitespace in the
// base name replaced by underscores.
func StoredFilename(originalName string, at time.Time) string {
	name := filepath.Base(originalName)
	ext := filepath.Ext(name)
	base := whitespace.ReplaceAllString(strings.TrimSuffix(name, ext), "_")
	return fmt.Sprintf("%d-%s%s", at.UnixMilli(), base, ext)
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, files []dto.UploadFile) (*dto.UploadResponse, error) {
	if len(files) == 0 {
		return nil, apperror.InvalidInput("no files uploaded")
	}
	if len(files) > MaxFilesPerUpload {
		return nil, apperror.InvalidInput("at most %d files per upload, got %d", MaxFilesPerUpload, len(files))
	}

	dir := filepath.Join(s.uploadDir, userId.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	var (
		docs    []*entity.Document
		written []string
		skipped []string
	)
	cleanup := func() {
		for _, p := range written {
			_ = os.Remove(p)
		}
	}

	for _, f := range files {
		if !isPDF(f) {
			skipped = append(skipped, f.OriginalName)
			continue
		}

		filename := StoredFilename(f.OriginalName, s.now())
		target := filepath.Join(dir, filename)
		size, err := writeFile(target, f.Content)
		if err != nil {
			cleanup()
			return nil, err
		}
		written = append(written, target)

		docs = append(docs, &entity.Document{
			Id:           uuid.New(),
			UserId:       userId,
			OriginalName: f.OriginalName,
			Filename:     filename,
			Path:         path.Join("/uploads", userId.String(), filename),
			Size:         size,
			UploadedAt:   s.now(),
		})
	}

	if len(docs) == 0 {
		return nil, apperror.InvalidInput("only PDF files are allowed")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		cleanup()
		return nil, err
	}
	defer uow.Rollback()

	for _, doc := range docs {
		if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
			cleanup()
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		cleanup()
		return nil, err
	}

	res := &dto.UploadResponse{Documents: make([]dto.DocumentResponse, 0, len(docs)), Skipped: skipped}
	for _, doc := range docs {
		res.Documents = append(res.Documents, toDocumentResponse(doc))
		publishEvent(ctx, s.publisher, s.logger, events.DocumentUploaded, map[string]interface{}{
			"user_id":     userId.String(),
			"document_id": doc.Id.String(),
			"filename":    doc.Filename,
			"size":        doc.Size,
		})
	}

	s.logger.Info("DOCUMENT", "Documents uploaded", map[string]interface{}{
		"user_id":  userId.String(),
		"uploaded": len(docs),
		"skipped":  len(skipped),
	})

	return res, nil
}

func writeFile(target string, content io.Reader) (int64, error) {
	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	size, err := io.Copy(out, content)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return size, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAllByOwner(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		res = append(res, toDocumentResponse(doc))
	}
	return res, nil
}

// Delete removes the document together with its chunks and conversation.
// The stored file is removed after the rows are gone.
func (s *documentService) Delete(ctx context.Context, userId, documentId uuid.UUID) (*dto.DeleteDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	doc, err := uow.DocumentRepository().FindOne(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFoundError("document", "Document not found")
	}

	removed, err := uow.ChunkRepository().DeleteByDocument(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}
	if _, err := uow.ConversationRepository().Delete(ctx, userId, documentId); err != nil {
		return nil, err
	}
	if err := uow.DocumentRepository().Delete(ctx, userId, documentId); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := os.Remove(s.diskPath(userId, doc)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("DOCUMENT", "Failed to remove stored file", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}

	publishEvent(ctx, s.publisher, s.logger, events.DocumentDeleted, map[string]interface{}{
		"user_id":        userId.String(),
		"document_id":    documentId.String(),
		"chunks_deleted": removed,
	})

	return &dto.DeleteDocumentResponse{DocumentId: documentId, ChunksDeleted: removed}, nil
}

func (s *documentService) diskPath(userId uuid.UUID, doc *entity.Document) string {
	return filepath.Join(s.uploadDir, userId.String(), doc.Filename)
}

func toDocumentResponse(doc *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		Id:           doc.Id,
		OriginalName: doc.OriginalName,
		Filename:     doc.Filename,
		Path:         doc.Path,
		Size:         doc.Size,
		UploadedAt:   doc.UploadedAt,
	}
}
