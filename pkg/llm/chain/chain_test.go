package chain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
	"notesquest-be/pkg/llm"
)

type fakeProvider struct {
	name        string
	err         error
	result      *llm.Result
	calls       int
	lastOptions *llm.Options
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GenerateSummary(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	f.lastOptions = llm.BuildOptions(options...)
	return f.respond()
}

func (f *fakeProvider) GenerateQuiz(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	f.lastOptions = llm.BuildOptions(options...)
	return f.respond()
}

func (f *fakeProvider) GenerateFlashcards(ctx context.Context, content, title string, options ...llm.Option) (*llm.Result, error) {
	f.lastOptions = llm.BuildOptions(options...)
	return f.respond()
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	return f.respond()
}

func (f *fakeProvider) Health(ctx context.Context) error { return nil }

func (f *fakeProvider) respond() (*llm.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	return &res, nil
}

func unavailable(name string) error {
	return &apperror.UpstreamError{Provider: name, Status: 503, Retryable: true, Err: errors.New("service unavailable")}
}

func validContent() string {
	return strings.Repeat("study material ", 10)
}

func TestGenerateFirstProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &llm.Result{Content: "summary text"}}
	fallback := &fakeProvider{name: "fallback", result: &llm.Result{Content: "should not be used"}}

	c := New([]llm.Provider{primary, fallback})
	result, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: validContent(),
		Title:   "Biology Notes",
	})

	require.NoError(t, err)
	assert.Equal(t, "summary text", result.Content)
	assert.False(t, result.Fallback)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "a success must stop the walk")
}

func TestGenerateFallsBackOnRetryableFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: unavailable("primary")}
	fallback := &fakeProvider{name: "fallback", result: &llm.Result{Content: "fallback summary"}}

	c := New([]llm.Provider{primary, fallback})
	result, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: validContent(),
		Title:   "Biology Notes",
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback summary", result.Content)
	assert.True(t, result.Fallback)
	assert.Equal(t, "fallback", result.Provider)
}

func TestGenerateAllProvidersExhausted(t *testing.T) {
	providers := []llm.Provider{
		&fakeProvider{name: "a", err: unavailable("a")},
		&fakeProvider{name: "b", err: unavailable("b")},
		&fakeProvider{name: "c", err: unavailable("c")},
	}

	c := New(providers)
	_, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: validContent(),
		Title:   "Biology Notes",
	})

	var exhausted *apperror.AllProvidersExhausted
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, 3)
	assert.Equal(t, "a", exhausted.Failures[0].Provider)
	assert.Equal(t, "b", exhausted.Failures[1].Provider)
	assert.Equal(t, "c", exhausted.Failures[2].Provider)
}

func TestGenerateClientRejectionIsFatal(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: &apperror.UpstreamError{
		Provider: "primary", Status: 400, Err: errors.New("bad request"),
	}}
	fallback := &fakeProvider{name: "fallback", result: &llm.Result{Content: "unused"}}

	c := New([]llm.Provider{primary, fallback})
	_, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: validContent(),
		Title:   "Biology Notes",
	})

	require.Error(t, err)
	assert.Equal(t, 0, fallback.calls, "a 400 must not advance the chain")
}

func TestGenerateUnsupportedEndpointAdvances(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: &apperror.UpstreamError{
		Provider: "primary", Status: 404, Err: errors.New("no such endpoint"),
	}}
	fallback := &fakeProvider{name: "fallback", result: &llm.Result{Content: "served"}}

	c := New([]llm.Provider{primary, fallback})
	result, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: validContent(),
		Title:   "Biology Notes",
	})

	require.NoError(t, err)
	assert.Equal(t, "served", result.Content)
}

func TestGenerateContentTooShort(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &llm.Result{Content: "unused"}}

	c := New([]llm.Provider{primary})
	_, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: "too short",
		Title:   "Notes",
	})

	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "content", validation.Constraint)
	assert.Equal(t, 0, primary.calls, "validation must run before any network call")
}

func TestGenerateTitleRequired(t *testing.T) {
	c := New([]llm.Provider{&fakeProvider{name: "primary", result: &llm.Result{}}})
	_, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindSummary,
		Content: validContent(),
		Title:   "   ",
	})

	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "title", validation.Constraint)
}

func TestGenerateCaching(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &llm.Result{Content: "cached summary"}}

	c := New([]llm.Provider{primary}, WithCacheTTL(time.Minute))
	req := GenerationRequest{
		Kind:     constant.GenerationKindSummary,
		Content:  validContent(),
		Title:    "Biology Notes",
		CacheKey: "doc-1",
	}

	first, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := c.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, primary.calls, "second call must be served from cache")

	req.Force = true
	_, err = c.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls, "force must bypass the cache")
}

func TestGenerateCacheKeyedByOptions(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &llm.Result{QuestionsText: "Q1) ..."}}

	c := New([]llm.Provider{primary}, WithCacheTTL(time.Minute))
	base := GenerationRequest{
		Kind:     constant.GenerationKindQuiz,
		Content:  validContent(),
		Title:    "Biology Notes",
		CacheKey: "doc-1",
	}

	easy := base
	easy.Options = []llm.Option{llm.WithNumQuestions(8), llm.WithDifficulty("easy")}
	_, err := c.Generate(context.Background(), easy)
	require.NoError(t, err)

	hard := base
	hard.Options = []llm.Option{llm.WithNumQuestions(30), llm.WithDifficulty("hard")}
	_, err = c.Generate(context.Background(), hard)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls, "a request with different options must not be served the cached result")
	assert.Equal(t, 30, primary.lastOptions.NumQuestions)
	assert.Equal(t, "hard", primary.lastOptions.Difficulty)

	repeat := base
	repeat.Options = []llm.Option{llm.WithNumQuestions(8), llm.WithDifficulty("easy")}
	_, err = c.Generate(context.Background(), repeat)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls, "matching options must hit the cache")
}

func TestGenerateSummaryCacheKeyedByMaxLength(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &llm.Result{Content: "summary"}}

	c := New([]llm.Provider{primary}, WithCacheTTL(time.Minute))
	base := GenerationRequest{
		Kind:     constant.GenerationKindSummary,
		Content:  validContent(),
		Title:    "Biology Notes",
		CacheKey: "doc-1",
	}

	short := base
	short.Options = []llm.Option{llm.WithMaxLength(200)}
	_, err := c.Generate(context.Background(), short)
	require.NoError(t, err)

	long := base
	long.Options = []llm.Option{llm.WithMaxLength(1500)}
	_, err = c.Generate(context.Background(), long)
	require.NoError(t, err)

	assert.Equal(t, 2, primary.calls, "summaries of different lengths are distinct cache entries")
}

func TestQuizDefaultCountUsesRunes(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &llm.Result{QuestionsText: "Q1) ..."}}

	// 40k runes but 80k bytes; the derived count must come from runes.
	c := New([]llm.Provider{primary})
	_, err := c.Generate(context.Background(), GenerationRequest{
		Kind:    constant.GenerationKindQuiz,
		Content: strings.Repeat("é", 40_000),
		Title:   "Unicode Notes",
	})

	require.NoError(t, err)
	assert.Equal(t, 12, primary.lastOptions.NumQuestions)
}

func TestChatFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: unavailable("primary")}
	fallback := &fakeProvider{name: "fallback", result: &llm.Result{Content: "hello"}}

	c := New([]llm.Provider{primary, fallback})
	result, err := c.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "hello", result.Content)
	assert.True(t, result.Fallback)
}

func TestChatEmptyHistory(t *testing.T) {
	c := New([]llm.Provider{&fakeProvider{name: "primary", result: &llm.Result{}}})
	_, err := c.Chat(context.Background(), nil)

	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestQuizQuestionCount(t *testing.T) {
	cases := []struct {
		name       string
		contentLen int
		expected   int
	}{
		{"short content hits the floor", 1_000, 8},
		{"mid content scales", 50_000, 15},
		{"long content hits the ceiling", 500_000, 30},
		{"exact boundary", 100_000, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, QuizQuestionCount(tc.contentLen))
		})
	}
}
