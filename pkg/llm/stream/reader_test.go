package stream

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sse(frames ...string) string {
	var b strings.Builder
	for _, f := range frames {
		b.WriteString("data: ")
		b.WriteString(f)
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestConsumeDualChannelExchange(t *testing.T) {
	body := sse(
		`{"type":"thinking_start"}`,
		`{"type":"thinking","token":"Let me","text":"Let me"}`,
		`{"type":"thinking","token":" think","text":"Let me think"}`,
		`{"type":"thinking_complete","text":"Let me think"}`,
		`{"type":"message_start"}`,
		`{"type":"message","token":"The mitochondria","text":"The mitochondria"}`,
		`{"type":"message","token":" is the powerhouse of the cell","text":"The mitochondria is the powerhouse of the cell"}`,
		`{"type":"message_complete","text":"The mitochondria is the powerhouse of the cell"}`,
	)

	var thinkingTokens, messageTokens []string
	exchange, err := Consume(context.Background(), strings.NewReader(body), Callbacks{
		OnThinkingToken: func(token, _ string) { thinkingTokens = append(thinkingTokens, token) },
		OnMessageToken:  func(token, _ string) { messageTokens = append(messageTokens, token) },
	})
	require.NoError(t, err)

	assert.Equal(t, "The mitochondria is the powerhouse of the cell", exchange.Message)
	assert.Equal(t, "Let me think", exchange.Thinking)
	assert.True(t, exchange.Complete)
	assert.Len(t, thinkingTokens, 2)
	assert.Len(t, messageTokens, 2)
}

func TestConsumeStopsAtMessageComplete(t *testing.T) {
	// Frames after message_complete must never be consumed.
	body := sse(
		`{"type":"message_start"}`,
		`{"type":"message","token":"hi","text":"hi"}`,
		`{"type":"message_complete","text":"hi"}`,
		`{"type":"message","token":" trailing","text":"hi trailing"}`,
	)

	exchange, err := Consume(context.Background(), strings.NewReader(body), Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, "hi", exchange.Message)
	assert.True(t, exchange.Complete)
}

func TestConsumeAcceptsDoneTerminator(t *testing.T) {
	body := sse(
		`{"type":"message","token":"partial","text":"partial"}`,
	) + "data: [DONE]\n\n"

	exchange, err := Consume(context.Background(), strings.NewReader(body), Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, "partial", exchange.Message)
	assert.True(t, exchange.Complete)
}

func TestConsumeEarlyEOFReturnsPartial(t *testing.T) {
	body := sse(
		`{"type":"message_start"}`,
		`{"type":"message","token":"half an ans","text":"half an ans"}`,
	)

	exchange, err := Consume(context.Background(), strings.NewReader(body), Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, "half an ans", exchange.Message)
	assert.False(t, exchange.Complete)
}

func TestConsumeErrorEventAborts(t *testing.T) {
	body := sse(
		`{"type":"message","token":"x","text":"x"}`,
		`{"type":"error","message":"model crashed"}`,
	)

	_, err := Consume(context.Background(), strings.NewReader(body), Callbacks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestConsumeSkipsMalformedFrames(t *testing.T) {
	body := "data: {not json}\n\n" + sse(`{"type":"message_complete","text":"ok"}`)

	exchange, err := Consume(context.Background(), strings.NewReader(body), Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, "ok", exchange.Message)
}

func TestConsumeUpdateAliases(t *testing.T) {
	body := sse(
		`{"type":"thinking_update","token":"a","text":"a"}`,
		`{"type":"message_update","token":"b","text":"b"}`,
		`{"type":"done","text":"b"}`,
	)

	exchange, err := Consume(context.Background(), strings.NewReader(body), Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, "a", exchange.Thinking)
	assert.Equal(t, "b", exchange.Message)
	assert.True(t, exchange.Complete)
}

func TestConsumeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := sse(`{"type":"message","token":"x","text":"x"}`)
	_, err := Consume(ctx, strings.NewReader(body), Callbacks{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatePhases(t *testing.T) {
	state := &State{}

	_, err := state.Apply(Event{Type: EventThinkingStart}, Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, PhaseStarted, state.Thinking.Phase)

	_, err = state.Apply(Event{Type: EventThinking, Token: "t", Text: "t"}, Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, PhaseAccumulating, state.Thinking.Phase)

	_, err = state.Apply(Event{Type: EventThinkingComplete, Text: "t"}, Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, state.Thinking.Phase)
	assert.Equal(t, PhaseNotStarted, state.Message.Phase)

	done, err := state.Apply(Event{Type: EventMessageComplete, Text: "m"}, Callbacks{})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, PhaseComplete, state.Message.Phase)
}
