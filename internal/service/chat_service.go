package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
	"notesquest-be/internal/dto"
	"notesquest-be/internal/entity"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/repository/memory"
	"notesquest-be/internal/repository/specification"
	"notesquest-be/internal/repository/unitofwork"
	"notesquest-be/pkg/llm"
	"notesquest-be/pkg/llm/chain"
	"notesquest-be/pkg/llm/stream"
)

// ErrStreamActive means the session already has a streaming exchange
// in flight; the controller maps it to 409.
var ErrStreamActive = errors.New("a stream is already active for this session")

type IChatService interface {
	CreateSession(ctx context.Context, ownerId *uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSessions(ctx context.Context, ownerId *uuid.UUID) ([]*dto.SessionListItem, error)
	GetHistory(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) ([]*dto.ChatHistoryItem, error)
	UpdateTitle(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID, req *dto.UpdateSessionTitleRequest) error
	DeleteSession(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) error

	Send(ctx context.Context, ownerId *uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)

	PrepareStream(ctx context.Context, ownerId *uuid.UUID, req *dto.SendChatRequest) (*StreamContext, error)
	FinishStream(ctx context.Context, sc *StreamContext, exchange *stream.Exchange, provider string)
	AbortStream(sc *StreamContext)
}

// StreamContext is the prepared state for one streaming exchange. The
// controller drives the transport; the service owns session bookkeeping.
type StreamContext struct {
	SessionId   uuid.UUID
	History     []llm.Message
	UserMessage string
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	chain      *chain.Chain
	publisher  IPublisherService
	streams    *memory.StreamRegistry
	log        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	chatChain *chain.Chain,
	publisher IPublisherService,
	streams *memory.StreamRegistry,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		chain:      chatChain,
		publisher:  publisher,
		streams:    streams,
		log:        log,
	}
}

// DeriveTitle builds a session title from the first user message.
func DeriveTitle(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return constant.DefaultChatTitle
	}
	if utf8.RuneCountInString(message) <= constant.ChatTitleMaxChars {
		return message
	}
	runes := []rune(message)
	return string(runes[:constant.ChatTitleMaxChars]) + "..."
}

func (s *chatService) CreateSession(ctx context.Context, ownerId *uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = constant.DefaultChatTitle
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id, Title: session.Title}, nil
}

func (s *chatService) GetSessions(ctx context.Context, ownerId *uuid.UUID) ([]*dto.SessionListItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedBy{OwnerId: ownerId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SessionListItem, len(sessions))
	for i, session := range sessions {
		items[i] = &dto.SessionListItem{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return items, nil
}

func (s *chatService) GetHistory(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) ([]*dto.ChatHistoryItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, uow, ownerId, id)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionId: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatHistoryItem, len(messages))
	for i, msg := range messages {
		items[i] = &dto.ChatHistoryItem{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Thinking:  msg.Thinking,
			Provider:  msg.Provider,
			CreatedAt: msg.CreatedAt,
		}
	}
	return items, nil
}

func (s *chatService) UpdateTitle(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID, req *dto.UpdateSessionTitleRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, uow, ownerId, id)
	if err != nil {
		return err
	}

	session.Title = strings.TrimSpace(req.Title)
	return uow.ChatSessionRepository().Update(ctx, session)
}

// DeleteSession removes the session and its transcript together.
func (s *chatService) DeleteSession(ctx context.Context, ownerId *uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findSession(ctx, uow, ownerId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteAllBySessionId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

// Send runs a non-streaming exchange through the fallback chain.
func (s *chatService) Send(ctx context.Context, ownerId *uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	session, history, err := s.prepare(ctx, ownerId, req)
	if err != nil {
		return nil, err
	}

	result, err := s.chain.Chat(ctx, history)
	if err != nil {
		return nil, err
	}

	s.persistTranscript(ctx, &dto.PersistTranscriptMessage{
		ChatSessionId:    session.Id,
		UserMessage:      req.Message,
		AssistantMessage: result.Content,
		Thinking:         result.Thinking,
		Provider:         result.Provider,
	})

	return &dto.SendChatResponse{
		ChatSessionId: session.Id,
		Title:         session.Title,
		Reply:         result.Content,
		Thinking:      result.Thinking,
		Provider:      result.Provider,
		Fallback:      result.Fallback,
	}, nil
}

// PrepareStream resolves the session and claims it for a single
// streaming exchange.
func (s *chatService) PrepareStream(ctx context.Context, ownerId *uuid.UUID, req *dto.SendChatRequest) (*StreamContext, error) {
	session, history, err := s.prepare(ctx, ownerId, req)
	if err != nil {
		return nil, err
	}

	if !s.streams.TryAcquire(session.Id) {
		return nil, ErrStreamActive
	}

	return &StreamContext{
		SessionId:   session.Id,
		History:     history,
		UserMessage: req.Message,
	}, nil
}

// FinishStream releases the session claim and, for a completed
// exchange, queues the transcript append. Partial exchanges are
// dropped: the client saw the tokens but the transcript only keeps
// full turns.
func (s *chatService) FinishStream(ctx context.Context, sc *StreamContext, exchange *stream.Exchange, provider string) {
	s.streams.Release(sc.SessionId)

	if exchange == nil || !exchange.Complete {
		s.log.Warn("chat", "stream ended without completion, transcript not saved", map[string]interface{}{
			"chat_session_id": sc.SessionId,
		})
		return
	}

	s.persistTranscript(ctx, &dto.PersistTranscriptMessage{
		ChatSessionId:    sc.SessionId,
		UserMessage:      sc.UserMessage,
		AssistantMessage: exchange.Message,
		Thinking:         exchange.Thinking,
		Provider:         provider,
	})
}

func (s *chatService) AbortStream(sc *StreamContext) {
	s.streams.Release(sc.SessionId)
}

// prepare resolves or creates the session and builds the provider
// history ending with the new user message.
func (s *chatService) prepare(ctx context.Context, ownerId *uuid.UUID, req *dto.SendChatRequest) (*entity.ChatSession, []llm.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var session *entity.ChatSession
	if req.ChatSessionId == nil {
		session = &entity.ChatSession{
			Id:        uuid.New(),
			OwnerId:   ownerId,
			Title:     DeriveTitle(req.Message),
			CreatedAt: time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return nil, nil, err
		}
	} else {
		found, err := s.findSession(ctx, uow, ownerId, *req.ChatSessionId)
		if err != nil {
			return nil, nil, err
		}
		session = found
	}

	transcript, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionId: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, nil, err
	}

	history := make([]llm.Message, 0, len(transcript)+1)
	for _, msg := range transcript {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, llm.Message{Role: constant.ChatMessageRoleUser, Content: req.Message})

	return session, history, nil
}

func (s *chatService) findSession(ctx context.Context, uow unitofwork.UnitOfWork, ownerId *uuid.UUID, id uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerId: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFoundError("chat session", id.String())
	}
	return session, nil
}

func (s *chatService) persistTranscript(ctx context.Context, msg *dto.PersistTranscriptMessage) {
	if err := s.publisher.Publish(ctx, constant.PersistTranscriptTopic, msg); err != nil {
		s.log.Error("chat", "failed to queue transcript persistence", map[string]interface{}{
			"chat_session_id": msg.ChatSessionId,
			"error":           err.Error(),
		})
	}
}
