package llm

import (
	"context"

	"notesquest-be/pkg/flashcard"
	"notesquest-be/pkg/llm/stream"
	"notesquest-be/pkg/quiz"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like question count, difficulty, etc.
type Option func(*Options)

type Options struct {
	MaxLength    int    // target summary length in words
	NumQuestions int    // quiz question count
	NumCards     int    // flashcard count
	Difficulty   string // "easy" | "medium" | "hard"
	Temperature  float64
	Model        string // Override default model
}

func WithMaxLength(n int) Option {
	return func(o *Options) {
		o.MaxLength = n
	}
}

func WithNumQuestions(n int) Option {
	return func(o *Options) {
		o.NumQuestions = n
	}
}

func WithNumCards(n int) Option {
	return func(o *Options) {
		o.NumCards = n
	}
}

func WithDifficulty(level string) Option {
	return func(o *Options) {
		o.Difficulty = level
	}
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func BuildOptions(opts ...Option) *Options {
	o := &Options{Temperature: 0.7}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the canonical, provider-agnostic generation outcome. Every
// provider maps its own wire shape into this before returning, so
// callers never see provider-specific structure.
type Result struct {
	Kind     string
	Provider string
	Model    string
	// Fallback is set by the chain when a non-primary provider served
	// the request.
	Fallback bool

	// Summary text or chat reply, depending on Kind.
	Content string
	// Hidden reasoning attached to a chat reply, when present.
	Thinking string

	// Quiz payload: the raw wire text plus its parsed form.
	QuestionsText string
	Questions     []quiz.Question

	Cards []flashcard.Card
}

// Provider defines the contract for any generation backend
type Provider interface {
	// Name identifies the provider in logs and failure reports
	Name() string

	GenerateSummary(ctx context.Context, content, title string, options ...Option) (*Result, error)
	GenerateQuiz(ctx context.Context, content, title string, options ...Option) (*Result, error)
	GenerateFlashcards(ctx context.Context, content, title string, options ...Option) (*Result, error)

	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Result, error)

	// Health reports whether the backend is reachable
	Health(ctx context.Context) error
}

// StreamProvider is implemented by backends that can stream a chat
// exchange over the dual-channel protocol.
type StreamProvider interface {
	Provider
	ChatStream(ctx context.Context, history []Message, callbacks stream.Callbacks) (*stream.Exchange, error)
}
