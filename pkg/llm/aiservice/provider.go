package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
	"notesquest-be/pkg/flashcard"
	"notesquest-be/pkg/llm"
	"notesquest-be/pkg/llm/stream"
	"notesquest-be/pkg/quiz"
)

const providerName = "ai-service"

// AIServiceProvider talks to the self-hosted inference service. It is
// the only provider that exposes dedicated generation endpoints and a
// streaming chat endpoint.
type AIServiceProvider struct {
	BaseURL string
	Client  *http.Client
}

// Ensure AIServiceProvider implements both contracts
var _ llm.Provider = &AIServiceProvider{}
var _ llm.StreamProvider = &AIServiceProvider{}

func NewAIServiceProvider(baseURL string) *AIServiceProvider {
	return &AIServiceProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type summaryRequest struct {
	Content   string `json:"content"`
	Title     string `json:"title"`
	MaxLength int    `json:"max_length"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

type quizRequest struct {
	Content      string `json:"content"`
	Title        string `json:"title"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty,omitempty"`
}

type quizResponse struct {
	Questions string `json:"questions"`
	Model     string `json:"model"`
}

type flashcardsRequest struct {
	Content       string `json:"content"`
	Title         string `json:"title"`
	NumFlashcards int    `json:"num_flashcards"`
}

type flashcardsResponse struct {
	Flashcards []map[string]any `json:"flashcards"`
	Model      string           `json:"model"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Thinking string `json:"thinking,omitempty"`
	Model    string `json:"model"`
}

// --- Interface Implementation ---

func (p *AIServiceProvider) Name() string {
	return providerName
}

func (p *AIServiceProvider) GenerateSummary(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)
	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = constant.DefaultSummaryLength
	}

	var resp summaryResponse
	if err := p.post(ctx, "/generate/summary", summaryRequest{
		Content:   content,
		Title:     title,
		MaxLength: maxLength,
	}, &resp); err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:     constant.GenerationKindSummary,
		Provider: providerName,
		Model:    resp.Model,
		Content:  resp.Summary,
	}, nil
}

func (p *AIServiceProvider) GenerateQuiz(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)

	var resp quizResponse
	if err := p.post(ctx, "/generate/quiz", quizRequest{
		Content:      content,
		Title:        title,
		NumQuestions: opts.NumQuestions,
		Difficulty:   opts.Difficulty,
	}, &resp); err != nil {
		return nil, err
	}

	questions, err := quiz.Parse(resp.Questions)
	if err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:          constant.GenerationKindQuiz,
		Provider:      providerName,
		Model:         resp.Model,
		QuestionsText: resp.Questions,
		Questions:     questions,
	}, nil
}

func (p *AIServiceProvider) GenerateFlashcards(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)
	numCards := opts.NumCards
	if numCards <= 0 {
		numCards = constant.DefaultNumFlashcards
	}

	var resp flashcardsResponse
	if err := p.post(ctx, "/generate/flashcards", flashcardsRequest{
		Content:       content,
		Title:         title,
		NumFlashcards: numCards,
	}, &resp); err != nil {
		return nil, err
	}

	cards, err := flashcard.Normalize(resp.Flashcards)
	if err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:     constant.GenerationKindFlashcards,
		Provider: providerName,
		Model:    resp.Model,
		Cards:    cards,
	}, nil
}

func (p *AIServiceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)

	var resp chatResponse
	if err := p.post(ctx, "/chat", chatRequest{
		Messages:    mapMessages(history),
		Temperature: opts.Temperature,
	}, &resp); err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:     constant.GenerationKindChat,
		Provider: providerName,
		Model:    resp.Model,
		Content:  resp.Response,
		Thinking: resp.Thinking,
	}, nil
}

// ChatStream opens the streaming chat endpoint and consumes the
// dual-channel event protocol until the exchange completes.
func (p *AIServiceProvider) ChatStream(ctx context.Context, history []llm.Message, callbacks stream.Callbacks) (*stream.Exchange, error) {
	payloadBytes, err := json.Marshal(chatRequest{Messages: mapMessages(history)})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/chat/stream"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, p.classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, p.classifyStatus(resp.StatusCode, bodyBytes)
	}

	return stream.Consume(ctx, resp.Body, callbacks)
}

func (p *AIServiceProvider) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return p.classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &apperror.UpstreamError{
			Provider:  providerName,
			Status:    resp.StatusCode,
			Retryable: true,
			Err:       errors.New("health check failed"),
		}
	}
	return nil
}

// --- Helpers ---

func mapMessages(history []llm.Message) []chatMessage {
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = constant.ChatMessageRoleAssistant
		}
		messages[i] = chatMessage{Role: role, Content: msg.Content}
	}
	return messages
}

func (p *AIServiceProvider) post(ctx context.Context, path string, payload any, out any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+path, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return p.classifyTransport(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperror.UpstreamError{Provider: providerName, Retryable: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return p.classifyStatus(resp.StatusCode, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &apperror.UpstreamError{
			Provider: providerName,
			Err:      fmt.Errorf("unmarshal response: %w", err),
		}
	}
	return nil
}

func (p *AIServiceProvider) classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &apperror.UpstreamTimeout{Provider: providerName, Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &apperror.UpstreamTimeout{Provider: providerName, Err: err}
	}
	// Connection refused and friends: the service is down, fall through
	// to the next provider.
	return &apperror.UpstreamError{Provider: providerName, Retryable: true, Err: err}
}

func (p *AIServiceProvider) classifyStatus(status int, body []byte) error {
	retryable := status >= 500 || status == http.StatusTooManyRequests
	return &apperror.UpstreamError{
		Provider:  providerName,
		Status:    status,
		Retryable: retryable,
		Err:       fmt.Errorf("body: %s", string(body)),
	}
}
