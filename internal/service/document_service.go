package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
	"notesquest-be/internal/dto"
	"notesquest-be/internal/entity"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/repository/specification"
	"notesquest-be/internal/repository/unitofwork"
	"notesquest-be/pkg/events"
	"notesquest-be/pkg/extractor"
	pkgNats "notesquest-be/pkg/nats"
	"notesquest-be/pkg/storage"
)

type IDocumentService interface {
	Upload(ctx context.Context, ownerId *uuid.UUID, req *dto.UploadDocumentRequest) (*dto.CreateDocumentResponse, error)
	ProcessText(ctx context.Context, ownerId *uuid.UUID, req *dto.ProcessTextRequest) (*dto.CreateDocumentResponse, error)
	Reprocess(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) (*dto.CreateDocumentResponse, error)
	History(ctx context.Context, ownerId *uuid.UUID) ([]*dto.DocumentHistoryItem, error)
	Show(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	extractor      *extractor.Extractor
	objectStorage  storage.ObjectStorage
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	ext *extractor.Extractor,
	objectStorage storage.ObjectStorage,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		extractor:      ext,
		objectStorage:  objectStorage,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *documentService) Upload(ctx context.Context, ownerId *uuid.UUID, req *dto.UploadDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.FileName)), ".")
	title := strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	if title == "" {
		title = req.FileName
	}

	doc := entity.Document{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Title:     title,
		FileName:  req.FileName,
		FileType:  fileType,
		FileSize:  int64(len(req.Data)),
		Status:    constant.DocumentStatusProcessing,
		CreatedAt: time.Now(),
	}

	if s.objectStorage != nil {
		key := fmt.Sprintf("%s/%s", doc.Id, req.FileName)
		if err := s.objectStorage.Upload(ctx, key, req.Data, req.ContentType); err != nil {
			// The pipeline works from the in-memory bytes; losing the
			// mirror is not fatal.
			s.log.Warn("document", "failed to mirror upload to object storage", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
		} else {
			doc.StorageKey = key
		}
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	return s.ingest(ctx, uow, &doc, req.Data)
}

// ingest runs extraction for a stored document and records the
// outcome, shared by first upload and reprocessing.
func (s *documentService) ingest(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, raw []byte) (*dto.CreateDocumentResponse, error) {
	extraction, err := s.extractor.Decide(ctx, raw, doc.FileType)
	if err != nil {
		doc.Status = constant.DocumentStatusError
		doc.ErrorMessage = err.Error()
		if updateErr := uow.DocumentRepository().Update(ctx, doc); updateErr != nil {
			s.log.Error("document", "failed to record ingestion error", map[string]interface{}{
				"document_id": doc.Id,
				"error":       updateErr.Error(),
			})
		}
		s.publishEvent(ctx, events.TypeDocumentFailed, map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		return nil, err
	}

	doc.Content = extraction.Text
	doc.ExtractionMethod = extraction.Method
	doc.Degraded = extraction.Degraded
	doc.Status = constant.DocumentStatusProcessed
	doc.ErrorMessage = ""
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeDocumentIngested, map[string]interface{}{
		"document_id":       doc.Id,
		"extraction_method": extraction.Method,
		"degraded":          extraction.Degraded,
	})

	return &dto.CreateDocumentResponse{
		Id:               doc.Id,
		Title:            doc.Title,
		Status:           doc.Status,
		ExtractionMethod: doc.ExtractionMethod,
		Degraded:         doc.Degraded,
		ContentLength:    len(doc.Content),
	}, nil
}

// Reprocess re-runs extraction from the mirrored source file, for
// retrying a failed or degraded ingestion.
func (s *documentService) Reprocess(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerId: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFoundError("document", id.String())
	}
	if s.objectStorage == nil || doc.StorageKey == "" {
		return nil, apperror.NewValidationError("document", "document has no stored source file to reprocess")
	}

	raw, err := s.objectStorage.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, err
	}

	doc.Status = constant.DocumentStatusProcessing
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	return s.ingest(ctx, uow, doc, raw)
}

func (s *documentService) ProcessText(ctx context.Context, ownerId *uuid.UUID, req *dto.ProcessTextRequest) (*dto.CreateDocumentResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.NewValidationError("content", "content is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc := entity.Document{
		Id:               uuid.New(),
		OwnerId:          ownerId,
		Title:            req.Title,
		Content:          strings.TrimSpace(req.Content),
		FileType:         "txt",
		ExtractionMethod: constant.ExtractionMethodDirect,
		Status:           constant.DocumentStatusProcessed,
		CreatedAt:        time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeDocumentIngested, map[string]interface{}{
		"document_id":       doc.Id,
		"extraction_method": doc.ExtractionMethod,
	})

	return &dto.CreateDocumentResponse{
		Id:            doc.Id,
		Title:         doc.Title,
		Status:        doc.Status,
		ContentLength: len(doc.Content),
	}, nil
}

func (s *documentService) History(ctx context.Context, ownerId *uuid.UUID) ([]*dto.DocumentHistoryItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{OwnerId: ownerId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	documentIds := make([]uuid.UUID, len(docs))
	for i, doc := range docs {
		documentIds[i] = doc.Id
	}

	// One grouped count per result table, not one per document.
	summaryCounts, err := uow.SummaryRepository().CountByDocumentIds(ctx, documentIds)
	if err != nil {
		return nil, err
	}
	quizCounts, err := uow.QuizRepository().CountByDocumentIds(ctx, documentIds)
	if err != nil {
		return nil, err
	}
	cardCounts, err := uow.FlashcardSetRepository().CountByDocumentIds(ctx, documentIds)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DocumentHistoryItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, &dto.DocumentHistoryItem{
			Id:            doc.Id,
			Title:         doc.Title,
			FileType:      doc.FileType,
			Status:        doc.Status,
			Degraded:      doc.Degraded,
			ContentLength: len(doc.Content),
			HasSummary:    summaryCounts[doc.Id] > 0,
			HasQuiz:       quizCounts[doc.Id] > 0,
			HasFlashcards: cardCounts[doc.Id] > 0,
			CreatedAt:     doc.CreatedAt,
		})
	}
	return items, nil
}

func (s *documentService) Show(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerId: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFoundError("document", id.String())
	}

	return &dto.ShowDocumentResponse{
		Id:               doc.Id,
		Title:            doc.Title,
		Content:          doc.Content,
		FileName:         doc.FileName,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		ExtractionMethod: doc.ExtractionMethod,
		Status:           doc.Status,
		Degraded:         doc.Degraded,
		ErrorMessage:     doc.ErrorMessage,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

// Delete removes the document together with its generated results.
// The object storage mirror is removed best-effort afterwards.
func (s *documentService) Delete(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerId: ownerId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return apperror.NewNotFoundError("document", id.String())
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.SummaryRepository().DeleteAllByDocumentId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.QuizRepository().DeleteAllByDocumentId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.FlashcardSetRepository().DeleteAllByDocumentId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if s.objectStorage != nil && doc.StorageKey != "" {
		if err := s.objectStorage.Delete(ctx, doc.StorageKey); err != nil {
			s.log.Warn("document", "failed to remove stored object", map[string]interface{}{
				"document_id": id,
				"key":         doc.StorageKey,
				"error":       err.Error(),
			})
		}
	}

	return nil
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.log.Warn("document", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
