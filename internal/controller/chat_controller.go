package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"notesquest-be/internal/dto"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/pkg/serverutils"
	"notesquest-be/internal/service"
	"notesquest-be/pkg/llm"
	"notesquest-be/pkg/llm/stream"
)

// streamDeadline bounds one streamed exchange end to end. The body
// writer runs detached from the request context, so it carries its
// own deadline.
const streamDeadline = 5 * time.Minute

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	UpdateTitle(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	chain       chatChain
	log         logger.ILogger
}

// chatChain is the slice of the fallback chain the controller needs to
// locate a streaming-capable provider.
type chatChain interface {
	Providers() []llm.Provider
}

func NewChatController(chatService service.IChatService, chain chatChain, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		chain:       chain,
		log:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("session", c.CreateSession)
	h.Get("sessions", c.GetSessions)
	h.Get("session/:id", c.GetHistory)
	h.Put("session/:id/title", c.UpdateTitle)
	h.Delete("session/:id", c.DeleteSession)
	h.Post("chat", c.Send)
	h.Post("chat/stream", c.Stream)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) GetSessions(ctx *fiber.Ctx) error {
	res, err := c.chatService.GetSessions(ctx.Context(), serverutils.OwnerId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat sessions", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.chatService.GetHistory(ctx.Context(), serverutils.OwnerId(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) UpdateTitle(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.UpdateSessionTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.UpdateTitle(ctx.Context(), serverutils.OwnerId(ctx), id, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update session title", struct{}{}))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), serverutils.OwnerId(ctx), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chat session", struct{}{}))
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Send(ctx.Context(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat message", res))
}

// Stream runs one chat exchange over server-sent events, re-emitting
// the dual-channel token events as they arrive from the provider.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ownerId := serverutils.OwnerId(ctx)
	sc, err := c.chatService.PrepareStream(ctx.Context(), ownerId, &req)
	if err != nil {
		if errors.Is(err, service.ErrStreamActive) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	provider := c.streamProvider()

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithTimeout(context.Background(), streamDeadline)
		defer cancel()

		if provider == nil {
			c.streamFallback(streamCtx, w, ownerId, sc)
			return
		}

		exchange, err := provider.ChatStream(streamCtx, sc.History, stream.Callbacks{
			OnThinkingToken: func(token, cumulative string) {
				writeEvent(w, stream.Event{Type: stream.EventThinking, Token: token, Text: cumulative})
			},
			OnMessageToken: func(token, cumulative string) {
				writeEvent(w, stream.Event{Type: stream.EventMessage, Token: token, Text: cumulative})
			},
		})
		if err != nil {
			c.chatService.AbortStream(sc)
			c.log.Error("chat", "stream failed", map[string]interface{}{
				"chat_session_id": sc.SessionId,
				"error":           err.Error(),
			})
			writeEvent(w, stream.Event{Type: stream.EventError, Message: err.Error()})
			writeDone(w)
			return
		}

		c.chatService.FinishStream(streamCtx, sc, exchange, provider.Name())
		writeEvent(w, stream.Event{Type: stream.EventMessageComplete, Text: exchange.Message, ChatId: sc.SessionId.String()})
		writeDone(w)
	}))

	return nil
}

// streamFallback serves the exchange through a non-streaming provider
// when nothing in the chain can stream, emitting the reply as a single
// message event so the client contract holds.
func (c *chatController) streamFallback(ctx context.Context, w *bufio.Writer, ownerId *uuid.UUID, sc *service.StreamContext) {
	c.chatService.AbortStream(sc)

	req := dto.SendChatRequest{ChatSessionId: &sc.SessionId, Message: sc.UserMessage}
	res, err := c.chatService.Send(ctx, ownerId, &req)
	if err != nil {
		writeEvent(w, stream.Event{Type: stream.EventError, Message: err.Error()})
		writeDone(w)
		return
	}

	if res.Thinking != "" {
		writeEvent(w, stream.Event{Type: stream.EventThinking, Token: res.Thinking, Text: res.Thinking})
	}
	writeEvent(w, stream.Event{Type: stream.EventMessage, Token: res.Reply, Text: res.Reply})
	writeEvent(w, stream.Event{Type: stream.EventMessageComplete, Text: res.Reply, ChatId: sc.SessionId.String()})
	writeDone(w)
}

// streamProvider returns the first provider in the chain that speaks
// the streaming protocol, or nil.
func (c *chatController) streamProvider() llm.StreamProvider {
	for _, p := range c.chain.Providers() {
		if sp, ok := p.(llm.StreamProvider); ok {
			return sp
		}
	}
	return nil
}

func writeEvent(w *bufio.Writer, evt stream.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	_ = w.Flush()
}

func writeDone(w *bufio.Writer) {
	fmt.Fprint(w, "data: [DONE]\n\n")
	_ = w.Flush()
}
