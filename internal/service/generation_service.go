package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
	"notesquest-be/internal/dto"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/repository/specification"
	"notesquest-be/internal/repository/unitofwork"
	"notesquest-be/pkg/llm"
	"notesquest-be/pkg/llm/chain"
	"notesquest-be/pkg/quiz"
)

type IGenerationService interface {
	GenerateSummary(ctx context.Context, ownerId *uuid.UUID, req *dto.GenerateSummaryRequest) (*dto.SummaryResponse, error)
	GenerateQuiz(ctx context.Context, ownerId *uuid.UUID, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error)
	GenerateFlashcards(ctx context.Context, ownerId *uuid.UUID, req *dto.GenerateFlashcardsRequest) (*dto.FlashcardsResponse, error)

	LatestSummary(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID) (*dto.SummaryResponse, error)
	LatestQuiz(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID) (*dto.QuizResponse, error)
	LatestFlashcards(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID) (*dto.FlashcardsResponse, error)

	GradeQuiz(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID, req *dto.GradeQuizRequest) (*dto.GradeQuizResponse, error)
	ProviderHealth(ctx context.Context) map[string]string
}

type generationService struct {
	uowFactory unitofwork.RepositoryFactory
	chain      *chain.Chain
	publisher  IPublisherService
	log        logger.ILogger
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	generationChain *chain.Chain,
	publisher IPublisherService,
	log logger.ILogger,
) IGenerationService {
	return &generationService{
		uowFactory: uowFactory,
		chain:      generationChain,
		publisher:  publisher,
		log:        log,
	}
}

// source is resolved input for one generation: either a stored,
// processed document or inline text.
type source struct {
	content    string
	title      string
	documentId *uuid.UUID
	ownerId    *uuid.UUID
}

func (s *generationService) resolveSource(ctx context.Context, ownerId *uuid.UUID, documentId *uuid.UUID, content, title string) (*source, error) {
	if documentId == nil {
		if content == "" {
			return nil, apperror.NewValidationError("source", "either document_id or content is required")
		}
		return &source{content: content, title: title, ownerId: ownerId}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: *documentId},
		specification.OwnedBy{OwnerId: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFoundError("document", documentId.String())
	}
	if doc.Status != constant.DocumentStatusProcessed {
		return nil, apperror.NewValidationError("document", "document is not processed yet")
	}

	resolvedTitle := doc.Title
	if title != "" {
		resolvedTitle = title
	}
	return &source{content: doc.Content, title: resolvedTitle, documentId: documentId, ownerId: ownerId}, nil
}

func (s *generationService) cacheKey(src *source) string {
	if src.documentId == nil {
		return ""
	}
	return src.documentId.String()
}

func (s *generationService) GenerateSummary(ctx context.Context, ownerId *uuid.UUID, req *dto.GenerateSummaryRequest) (*dto.SummaryResponse, error) {
	src, err := s.resolveSource(ctx, ownerId, req.DocumentId, req.Content, req.Title)
	if err != nil {
		return nil, err
	}

	var options []llm.Option
	if req.MaxLength > 0 {
		options = append(options, llm.WithMaxLength(req.MaxLength))
	}

	result, err := s.chain.Generate(ctx, chain.GenerationRequest{
		Kind:     constant.GenerationKindSummary,
		Content:  src.content,
		Title:    src.title,
		CacheKey: s.cacheKey(src),
		Force:    req.Force,
		Options:  options,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.SummaryResponse{
		Summary:  result.Content,
		Provider: result.Provider,
		Model:    result.Model,
		Fallback: result.Fallback,
	}

	if src.documentId != nil {
		resp.DocumentId = *src.documentId
		s.persistAsync(ctx, &dto.PersistResultMessage{
			Kind:       constant.GenerationKindSummary,
			DocumentId: *src.documentId,
			OwnerId:    src.ownerId,
			Summary:    result.Content,
			Provider:   result.Provider,
			Model:      result.Model,
			Fallback:   result.Fallback,
		})
	}
	return resp, nil
}

func (s *generationService) GenerateQuiz(ctx context.Context, ownerId *uuid.UUID, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
	src, err := s.resolveSource(ctx, ownerId, req.DocumentId, req.Content, req.Title)
	if err != nil {
		return nil, err
	}

	var options []llm.Option
	if req.NumQuestions > 0 {
		options = append(options, llm.WithNumQuestions(req.NumQuestions))
	}
	if req.Difficulty != "" {
		options = append(options, llm.WithDifficulty(req.Difficulty))
	}

	result, err := s.chain.Generate(ctx, chain.GenerationRequest{
		Kind:     constant.GenerationKindQuiz,
		Content:  src.content,
		Title:    src.title,
		CacheKey: s.cacheKey(src),
		Force:    req.Force,
		Options:  options,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.QuizResponse{
		Questions: result.Questions,
		Provider:  result.Provider,
		Model:     result.Model,
		Fallback:  result.Fallback,
	}

	if src.documentId != nil {
		resp.DocumentId = *src.documentId
		s.persistAsync(ctx, &dto.PersistResultMessage{
			Kind:          constant.GenerationKindQuiz,
			DocumentId:    *src.documentId,
			OwnerId:       src.ownerId,
			QuestionsText: result.QuestionsText,
			Questions:     result.Questions,
			NumQuestions:  len(result.Questions),
			Difficulty:    req.Difficulty,
			Provider:      result.Provider,
			Model:         result.Model,
			Fallback:      result.Fallback,
		})
	}
	return resp, nil
}

func (s *generationService) GenerateFlashcards(ctx context.Context, ownerId *uuid.UUID, req *dto.GenerateFlashcardsRequest) (*dto.FlashcardsResponse, error) {
	src, err := s.resolveSource(ctx, ownerId, req.DocumentId, req.Content, req.Title)
	if err != nil {
		return nil, err
	}

	var options []llm.Option
	if req.NumCards > 0 {
		options = append(options, llm.WithNumCards(req.NumCards))
	}

	result, err := s.chain.Generate(ctx, chain.GenerationRequest{
		Kind:     constant.GenerationKindFlashcards,
		Content:  src.content,
		Title:    src.title,
		CacheKey: s.cacheKey(src),
		Force:    req.Force,
		Options:  options,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.FlashcardsResponse{
		Cards:    result.Cards,
		Provider: result.Provider,
		Model:    result.Model,
		Fallback: result.Fallback,
	}

	if src.documentId != nil {
		resp.DocumentId = *src.documentId
		s.persistAsync(ctx, &dto.PersistResultMessage{
			Kind:       constant.GenerationKindFlashcards,
			DocumentId: *src.documentId,
			OwnerId:    src.ownerId,
			Cards:      result.Cards,
			NumCards:   len(result.Cards),
			Provider:   result.Provider,
			Model:      result.Model,
			Fallback:   result.Fallback,
		})
	}
	return resp, nil
}

func (s *generationService) LatestSummary(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID) (*dto.SummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := append([]specification.Specification{
		specification.ByDocumentID{DocumentId: documentId},
		specification.OwnedBy{OwnerId: ownerId},
	}, specification.Latest()...)

	summary, err := uow.SummaryRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, apperror.NewNotFoundError("summary", documentId.String())
	}

	return &dto.SummaryResponse{
		Id:         summary.Id,
		DocumentId: summary.DocumentId,
		Summary:    summary.Content,
		Provider:   summary.Provider,
		Model:      summary.Model,
		Fallback:   summary.Fallback,
		CreatedAt:  summary.CreatedAt,
	}, nil
}

func (s *generationService) LatestQuiz(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID) (*dto.QuizResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := append([]specification.Specification{
		specification.ByDocumentID{DocumentId: documentId},
		specification.OwnedBy{OwnerId: ownerId},
	}, specification.Latest()...)

	latest, err := uow.QuizRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, apperror.NewNotFoundError("quiz", documentId.String())
	}

	return &dto.QuizResponse{
		Id:         latest.Id,
		DocumentId: latest.DocumentId,
		Questions:  latest.Questions,
		Provider:   latest.Provider,
		Model:      latest.Model,
		Fallback:   latest.Fallback,
		CreatedAt:  latest.CreatedAt,
	}, nil
}

func (s *generationService) LatestFlashcards(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID) (*dto.FlashcardsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := append([]specification.Specification{
		specification.ByDocumentID{DocumentId: documentId},
		specification.OwnedBy{OwnerId: ownerId},
	}, specification.Latest()...)

	latest, err := uow.FlashcardSetRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, apperror.NewNotFoundError("flashcards", documentId.String())
	}

	return &dto.FlashcardsResponse{
		Id:         latest.Id,
		DocumentId: latest.DocumentId,
		Cards:      latest.Cards,
		Provider:   latest.Provider,
		Model:      latest.Model,
		Fallback:   latest.Fallback,
		CreatedAt:  latest.CreatedAt,
	}, nil
}

// GradeQuiz scores answers against the latest quiz for the document.
// Grading is pure; attempts are not persisted.
func (s *generationService) GradeQuiz(ctx context.Context, ownerId *uuid.UUID, documentId uuid.UUID, req *dto.GradeQuizRequest) (*dto.GradeQuizResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := append([]specification.Specification{
		specification.ByDocumentID{DocumentId: documentId},
		specification.OwnedBy{OwnerId: ownerId},
	}, specification.Latest()...)

	latest, err := uow.QuizRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, apperror.NewNotFoundError("quiz", documentId.String())
	}

	answers := make(map[int]string, len(req.Answers))
	for key, label := range req.Answers {
		number, err := strconv.Atoi(key)
		if err != nil {
			return nil, apperror.NewValidationError("answers", "answer keys must be question numbers")
		}
		answers[number] = label
	}

	attempt := quiz.Grade(latest.Questions, answers)

	return &dto.GradeQuizResponse{
		QuizId:     latest.Id,
		DocumentId: documentId,
		Total:      attempt.Total,
		Correct:    attempt.Correct,
		Incorrect:  attempt.Incorrect,
		Percentage: attempt.Percentage,
		Results:    attempt.Results,
	}, nil
}

func (s *generationService) ProviderHealth(ctx context.Context) map[string]string {
	statuses := make(map[string]string)
	for _, provider := range s.chain.Providers() {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := provider.Health(checkCtx); err != nil {
			statuses[provider.Name()] = err.Error()
		} else {
			statuses[provider.Name()] = "ok"
		}
		cancel()
	}
	return statuses
}

func (s *generationService) persistAsync(ctx context.Context, msg *dto.PersistResultMessage) {
	if err := s.publisher.Publish(ctx, constant.PersistResultTopic, msg); err != nil {
		s.log.Error("generation", "failed to queue result persistence", map[string]interface{}{
			"kind":        msg.Kind,
			"document_id": msg.DocumentId,
			"error":       err.Error(),
		})
	}
}
