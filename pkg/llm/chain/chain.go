package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
	"notesquest-be/pkg/llm"
)

// GenerationRequest is one generation job routed through the fallback
// chain. CacheKey enables result caching when non-empty; Force bypasses
// a cached hit and overwrites it.
type GenerationRequest struct {
	Kind     string
	Content  string
	Title    string
	CacheKey string
	Force    bool
	Options  []llm.Option
}

type Option func(*Chain)

func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Chain) {
		c.attemptTimeout = d
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Chain) {
		c.cache = gocache.New(ttl, 2*ttl)
	}
}

// Chain tries an ordered list of providers until one succeeds. The
// first provider is the preferred one; anything after it is a fallback.
type Chain struct {
	providers      []llm.Provider
	attemptTimeout time.Duration
	cache          *gocache.Cache
}

func New(providers []llm.Provider, opts ...Option) *Chain {
	c := &Chain{
		providers:      providers,
		attemptTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate validates the request, then walks the provider list. A
// success stops the walk; a retryable failure advances; a non-retryable
// client rejection aborts the whole request.
func (c *Chain) Generate(ctx context.Context, req GenerationRequest) (*llm.Result, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	options := c.applyDefaults(req)
	key := cacheKey(req, llm.BuildOptions(options...))

	if c.cache != nil && req.CacheKey != "" && !req.Force {
		if hit, ok := c.cache.Get(key); ok {
			return hit.(*llm.Result), nil
		}
	}

	result, err := c.attempt(ctx, func(ctx context.Context, provider llm.Provider) (*llm.Result, error) {
		switch req.Kind {
		case constant.GenerationKindSummary:
			return provider.GenerateSummary(ctx, req.Content, req.Title, options...)
		case constant.GenerationKindQuiz:
			return provider.GenerateQuiz(ctx, req.Content, req.Title, options...)
		case constant.GenerationKindFlashcards:
			return provider.GenerateFlashcards(ctx, req.Content, req.Title, options...)
		default:
			return nil, apperror.NewValidationError("kind", fmt.Sprintf("unknown generation kind %q", req.Kind))
		}
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil && req.CacheKey != "" {
		c.cache.SetDefault(key, result)
	}
	return result, nil
}

// Chat runs a non-streaming chat exchange through the same fallback
// walk. Chat results are never cached.
func (c *Chain) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	if len(history) == 0 {
		return nil, apperror.NewValidationError("messages", "chat history is empty")
	}
	return c.attempt(ctx, func(ctx context.Context, provider llm.Provider) (*llm.Result, error) {
		return provider.Chat(ctx, history, options...)
	})
}

// Providers exposes the configured order, primary first.
func (c *Chain) Providers() []llm.Provider {
	return c.providers
}

func (c *Chain) attempt(ctx context.Context, call func(context.Context, llm.Provider) (*llm.Result, error)) (*llm.Result, error) {
	if len(c.providers) == 0 {
		return nil, &apperror.AllProvidersExhausted{}
	}

	failures := make([]apperror.AttemptFailure, 0, len(c.providers))
	for i, provider := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		result, err := call(attemptCtx, provider)
		cancel()

		if err == nil {
			result.Fallback = i > 0
			if result.Provider == "" {
				result.Provider = provider.Name()
			}
			return result, nil
		}

		if ctx.Err() != nil {
			// The caller is gone; stop walking.
			return nil, ctx.Err()
		}

		if fatal(err) {
			return nil, err
		}
		failures = append(failures, apperror.AttemptFailure{
			Provider: provider.Name(),
			Reason:   err.Error(),
		})
	}

	return nil, &apperror.AllProvidersExhausted{Failures: failures}
}

// fatal reports whether an attempt failure should abort the chain
// instead of advancing. Client rejections are fatal because every
// provider would reject the same input; an endpoint a provider simply
// does not serve is not.
func fatal(err error) bool {
	var validation *apperror.ValidationError
	if errors.As(err, &validation) {
		return true
	}
	var upstream *apperror.UpstreamError
	if errors.As(err, &upstream) && !upstream.Retryable {
		switch upstream.Status {
		case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
			return false
		}
		return upstream.Status >= 400 && upstream.Status < 500
	}
	return false
}

func (c *Chain) validate(req GenerationRequest) error {
	length := utf8.RuneCountInString(req.Content)
	if length < constant.MinContentChars {
		return apperror.NewValidationError("content",
			fmt.Sprintf("content must be at least %d characters", constant.MinContentChars))
	}
	if length > constant.MaxContentChars {
		return apperror.NewValidationError("content",
			fmt.Sprintf("content must be at most %d characters", constant.MaxContentChars))
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperror.NewValidationError("title", "title is required")
	}
	return nil
}

// applyDefaults fills in kind-specific sizing when the caller left it
// out. Quiz counts scale with content length so short notes do not get
// padded quizzes and long ones do not get shallow ones.
func (c *Chain) applyDefaults(req GenerationRequest) []llm.Option {
	options := req.Options
	built := llm.BuildOptions(options...)

	switch req.Kind {
	case constant.GenerationKindQuiz:
		if built.NumQuestions <= 0 {
			options = append(options, llm.WithNumQuestions(QuizQuestionCount(utf8.RuneCountInString(req.Content))))
		}
	case constant.GenerationKindFlashcards:
		if built.NumCards <= 0 {
			options = append(options, llm.WithNumCards(constant.DefaultNumFlashcards))
		}
	case constant.GenerationKindSummary:
		if built.MaxLength <= 0 {
			options = append(options, llm.WithMaxLength(constant.DefaultSummaryLength))
		}
	}
	return options
}

// QuizQuestionCount sizes a quiz from content length: 3 questions per
// 10k characters, clamped to [8, 30].
func QuizQuestionCount(contentLen int) int {
	n := contentLen * constant.QuizQuestionsPer10kChars / 10_000
	if n < constant.QuizMinQuestions {
		return constant.QuizMinQuestions
	}
	if n > constant.QuizMaxQuestions {
		return constant.QuizMaxQuestions
	}
	return n
}

// cacheKey includes the effective sizing options so a result generated
// for one shape is never served to a request asking for another.
func cacheKey(req GenerationRequest, opts *llm.Options) string {
	return fmt.Sprintf("%s:%s:l%d:q%d:c%d:d%s",
		req.Kind, req.CacheKey, opts.MaxLength, opts.NumQuestions, opts.NumCards, opts.Difficulty)
}
