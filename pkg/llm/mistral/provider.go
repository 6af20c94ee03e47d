package mistral

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
	providerName = "mistral"
	defaultModel = "mistral-small-latest"
)

// MistralProvider is a chat-completions fallback backend. It has no
// dedicated generation endpoints, so summaries, quizzes and flashcards
// are produced through prompting and parsed client-side.
type MistralProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &MistralProvider{}

func NewMistralProvider(baseURL, apiKey, modelName string) *MistralProvider {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return &MistralProvider{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type mistralChoice struct {
	Message      mistralMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type mistralChatResponse struct {
	Model   string          `json:"model"`
	Choices []mistralChoice `json:"choices"`
}

// --- Interface Implementation ---

func (m *MistralProvider) Name() string {
	return providerName
}

func (m *MistralProvider) GenerateSummary(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)
	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = constant.DefaultSummaryLength
	}

	reply, model, err := m.complete(ctx, constant.SummarySystemPrompt,
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

func (m *MistralProvider) GenerateQuiz(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)

	reply, model, err := m.complete(ctx, constant.QuizSystemPrompt,
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

func (m *MistralProvider) GenerateFlashcards(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)
	numCards := opts.NumCards
	if numCards <= 0 {
		numCards = constant.DefaultNumFlashcards
	}

	reply, model, err := m.complete(ctx, constant.CardSystemPrompt,
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

func (m *MistralProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	opts := llm.BuildOptions(options...)

	messages := make([]mistralMessage, 0, len(history)+1)
	messages = append(messages, mistralMessage{Role: constant.ChatMessageRoleSystem, Content: constant.ChatSystemPrompt})
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = constant.ChatMessageRoleAssistant
		}
		messages = append(messages, mistralMessage{Role: role, Content: msg.Content})
	}

	reply, model, err := m.send(ctx, messages, opts)
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

func (m *MistralProvider) Health(ctx context.Context) error {
	if m.APIKey == "" {
		return &apperror.UpstreamError{
			Provider: providerName,
			Err:      errors.New("no api key configured"),
		}
	}
	return nil
}

// --- Helpers ---

func (m *MistralProvider) complete(ctx context.Context, system, user string, opts *llm.Options) (string, string, error) {
	return m.send(ctx, []mistralMessage{
		{Role: constant.ChatMessageRoleSystem, Content: system},
		{Role: constant.ChatMessageRoleUser, Content: user},
	}, opts)
}

func (m *MistralProvider) send(ctx context.Context, messages []mistralMessage, opts *llm.Options) (string, string, error) {
	model := m.ModelName
	if opts.Model != "" {
		model = opts.Model
	}

	payloadBytes, err := json.Marshal(mistralChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	url := m.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.Client.Do(req)
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

	var chatResp mistralChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", "", &apperror.UpstreamError{
			Provider: providerName,
			Err:      fmt.Errorf("unmarshal response: %w", err),
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
