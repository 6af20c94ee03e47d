package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"notesquest-be/internal/constant"
	"notesquest-be/internal/dto"
	"notesquest-be/internal/entity"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/repository/specification"
	"notesquest-be/internal/repository/unitofwork"
	"notesquest-be/pkg/events"
	"notesquest-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus and turns queued payloads
// into database rows. Results and transcripts are written here so the
// generating request never waits on the database.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	uowFactory unitofwork.RepositoryFactory
	events     *nats.Publisher
	log        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *nats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		uowFactory: uowFactory,
		events:     eventPublisher,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	results, err := cs.pubSub.Subscribe(ctx, constant.PersistResultTopic)
	if err != nil {
		return err
	}
	transcripts, err := cs.pubSub.Subscribe(ctx, constant.PersistTranscriptTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range results {
			cs.processResult(ctx, msg)
		}
	}()
	go func() {
		for msg := range transcripts {
			cs.processTranscript(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processResult(ctx context.Context, msg *message.Message) {
	var payload dto.PersistResultMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal result message", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed payloads never become valid. Ack to stop the retry loop.
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.log.Error("consumer", "failed to load document for result", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if doc == nil {
		// Document deleted between generation and persistence. Drop the result.
		msg.Ack()
		return
	}

	switch payload.Kind {
	case constant.GenerationKindSummary:
		err = uow.SummaryRepository().Create(ctx, &entity.Summary{
			Id:         uuid.New(),
			DocumentId: payload.DocumentId,
			OwnerId:    payload.OwnerId,
			Content:    payload.Summary,
			Provider:   payload.Provider,
			Model:      payload.Model,
			Fallback:   payload.Fallback,
			CreatedAt:  time.Now(),
		})
	case constant.GenerationKindQuiz:
		err = uow.QuizRepository().Create(ctx, &entity.Quiz{
			Id:            uuid.New(),
			DocumentId:    payload.DocumentId,
			OwnerId:       payload.OwnerId,
			QuestionsText: payload.QuestionsText,
			Questions:     payload.Questions,
			NumQuestions:  payload.NumQuestions,
			Difficulty:    payload.Difficulty,
			Provider:      payload.Provider,
			Model:         payload.Model,
			Fallback:      payload.Fallback,
			CreatedAt:     time.Now(),
		})
	case constant.GenerationKindFlashcards:
		err = uow.FlashcardSetRepository().Create(ctx, &entity.FlashcardSet{
			Id:         uuid.New(),
			DocumentId: payload.DocumentId,
			OwnerId:    payload.OwnerId,
			Cards:      payload.Cards,
			NumCards:   payload.NumCards,
			Provider:   payload.Provider,
			Model:      payload.Model,
			Fallback:   payload.Fallback,
			CreatedAt:  time.Now(),
		})
	default:
		cs.log.Error("consumer", "unknown result kind", map[string]interface{}{
			"kind": payload.Kind,
		})
		msg.Ack()
		return
	}

	if err != nil {
		cs.log.Error("consumer", "failed to persist result", map[string]interface{}{
			"kind":        payload.Kind,
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.publishEvent(ctx, events.New(events.TypeGenerationCompleted, map[string]interface{}{
		"kind":        payload.Kind,
		"document_id": payload.DocumentId.String(),
		"provider":    payload.Provider,
	}))
	msg.Ack()
}

func (cs *consumerService) processTranscript(ctx context.Context, msg *message.Message) {
	var payload dto.PersistTranscriptMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal transcript message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: payload.ChatSessionId})
	if err != nil {
		cs.log.Error("consumer", "failed to load chat session", map[string]interface{}{
			"chat_session_id": payload.ChatSessionId,
			"error":           err.Error(),
		})
		msg.Nack()
		return
	}
	if session == nil {
		// Session deleted while the exchange was in flight.
		msg.Ack()
		return
	}

	if err := uow.Begin(ctx); err != nil {
		msg.Nack()
		return
	}

	now := time.Now()
	user := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       payload.UserMessage,
		CreatedAt:     now,
	}
	assistant := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       payload.AssistantMessage,
		Thinking:      payload.Thinking,
		Provider:      payload.Provider,
		CreatedAt:     now.Add(time.Millisecond),
	}

	if err := uow.ChatMessageRepository().Create(ctx, &user); err != nil {
		_ = uow.Rollback()
		cs.nackTranscript(msg, payload.ChatSessionId, err)
		return
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistant); err != nil {
		_ = uow.Rollback()
		cs.nackTranscript(msg, payload.ChatSessionId, err)
		return
	}

	// First exchange on an untitled session names it after the opening
	// user message.
	if session.Title == "" || session.Title == constant.DefaultChatTitle {
		session.Title = DeriveTitle(payload.UserMessage)
	}
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		_ = uow.Rollback()
		cs.nackTranscript(msg, payload.ChatSessionId, err)
		return
	}

	if err := uow.Commit(); err != nil {
		cs.nackTranscript(msg, payload.ChatSessionId, err)
		return
	}

	cs.publishEvent(ctx, events.New(events.TypeChatExchangeSaved, map[string]interface{}{
		"chat_session_id": session.Id.String(),
		"provider":        payload.Provider,
	}))
	msg.Ack()
}

func (cs *consumerService) nackTranscript(msg *message.Message, sessionId uuid.UUID, err error) {
	cs.log.Error("consumer", "failed to persist transcript", map[string]interface{}{
		"chat_session_id": sessionId,
		"error":           err.Error(),
	})
	msg.Nack()
}

func (cs *consumerService) publishEvent(ctx context.Context, evt events.Event) {
	if cs.events == nil {
		return
	}
	if err := cs.events.Publish(ctx, evt); err != nil {
		cs.log.Warn("consumer", "failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}
