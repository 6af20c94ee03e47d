package openai

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
	"notesquest-be/pkg/quiz"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4o-mini"
)

// OpenAIProvider is the last-resort chat-completions backend.
type OpenAIProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return &OpenAIProvider{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type openaiChatResponse struct {
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Error   *openaiError   `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (o *OpenAIProvider) Name() string {
	return providerName
}

func (o *OpenAIProvider) GenerateSummary(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)
	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = constant.DefaultSummaryLength
	}

	reply, model, err := o.complete(ctx, constant.SummarySystemPrompt,
		llm.SummaryPrompt(content, title, maxLength), opts)
	if err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:     constant.GenerationKindSummary,
		Provider: providerName,
		Model:    model,
		Content:  reply,
	}, nil
}

func (o *OpenAIProvider) GenerateQuiz(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)

	reply, model, err := o.complete(ctx, constant.QuizSystemPrompt,
		llm.QuizPrompt(content, title, opts.NumQuestions, opts.Difficulty), opts)
	if err != nil {
		return nil, err
	}

	questions, err := quiz.Parse(reply)
	if err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:          constant.GenerationKindQuiz,
		Provider:      providerName,
		Model:         model,
		QuestionsText: reply,
		Questions:     questions,
	}, nil
}

func (o *OpenAIProvider) GenerateFlashcards(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)
	numCards := opts.NumCards
	if numCards <= 0 {
		numCards = constant.DefaultNumFlashcards
	}

	reply, model, err := o.complete(ctx, constant.CardSystemPrompt,
		llm.FlashcardsPrompt(content, title, numCards), opts)
	if err != nil {
		return nil, err
	}

	payload, ok := llm.ExtractJSONArray(reply)
	if !ok {
		return nil, &apperror.ParseError{Kind: "flashcards", Message: "reply contains no JSON array"}
	}
	cards, err := flashcard.NormalizeJSON([]byte(payload))
	if err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:     constant.GenerationKindFlashcards,
		Provider: providerName,
		Model:    model,
		Cards:    cards,
	}, nil
}

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)

	messages := make([]openaiMessage, 0, len(history)+1)
	messages = append(messages, openaiMessage{Role: constant.ChatMessageRoleSystem, Content: constant.ChatSystemPrompt})
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = constant.ChatMessageRoleAssistant
		}
		messages = append(messages, openaiMessage{Role: role, Content: msg.Content})
	}

	reply, model, err := o.send(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	return &llm.Result{
		Kind:     constant.GenerationKindChat,
		Provider: providerName,
		Model:    model,
		Content:  reply,
	}, nil
}

func (o *OpenAIProvider) Health(ctx context.Context) error {
	if o.APIKey == "" {
		return &apperror.UpstreamError{
			Provider: providerName,
			Err:      errors.New("no api key configured"),
		}
	}
	return nil
}

// --- Helpers ---

func (o *OpenAIProvider) complete(ctx context.Context, system, user string, opts *llm.Options) (string, string, error) {
	return o.send(ctx, []openaiMessage{
		{Role: constant.ChatMessageRoleSystem, Content: system},
		{Role: constant.ChatMessageRoleUser, Content: user},
	}, opts)
}

func (o *OpenAIProvider) send(ctx context.Context, messages []openaiMessage, opts *llm.Options) (string, string, error) {
	model := o.ModelName
	if opts.Model != "" {
		model = opts.Model
	}

	payloadBytes, err := json.Marshal(openaiChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", "", &apperror.UpstreamTimeout{Provider: providerName, Err: err}
		}
		return "", "", &apperror.UpstreamError{Provider: providerName, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &apperror.UpstreamError{Provider: providerName, Retryable: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", "", &apperror.UpstreamError{
			Provider:  providerName,
			Status:    resp.StatusCode,
			Retryable: retryable,
			Err:       fmt.Errorf("body: %s", string(bodyBytes)),
		}
	}

	var chatResp openaiChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", "", &apperror.UpstreamError{
			Provider: providerName,
			Err:      fmt.Errorf("unmarshal response: %w", err),
		}
	}
	if chatResp.Error != nil {
		return "", "", &apperror.UpstreamError{
			Provider: providerName,
			Err:      errors.New(chatResp.Error.Message),
		}
	}
	if len(chatResp.Choices) == 0 {
		return "", "", &apperror.UpstreamError{
			Provider: providerName,
			Err:      errors.New("response has no choices"),
		}
	}

	return chatResp.Choices[0].Message.Content, chatResp.Model, nil
}
