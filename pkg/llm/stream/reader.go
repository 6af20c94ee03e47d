package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"notesquest-be/internal/apperror"
)

const dataPrefix = "data: "

// State is the per-exchange state machine driving both channels.
type State struct {
	Thinking ChannelState
	Message  ChannelState
}

// Apply advances the state machine with one event. It returns done=true
// when the exchange is logically over: the provider signals completion
// before the physical stream closes, so the consumer must stop there
// instead of waiting for EOF.
func (s *State) Apply(ev Event, cb Callbacks) (done bool, err error) {
	switch normalizeType(ev.Type) {
	case EventThinkingStart:
		s.Thinking = ChannelState{Phase: PhaseStarted}
	case EventThinking:
		s.Thinking.Phase = PhaseAccumulating
		s.Thinking.Text = ev.Text
		if cb.OnThinkingToken != nil {
			cb.OnThinkingToken(ev.Token, ev.Text)
		}
	case EventThinkingComplete:
		s.Thinking.Phase = PhaseComplete
		if ev.Text != "" {
			s.Thinking.Text = ev.Text
		}
	case EventMessageStart:
		s.Message = ChannelState{Phase: PhaseStarted}
	case EventMessage:
		s.Message.Phase = PhaseAccumulating
		s.Message.Text = ev.Text
		if cb.OnMessageToken != nil {
			cb.OnMessageToken(ev.Token, ev.Text)
		}
	case EventMessageComplete:
		s.Message.Phase = PhaseComplete
		if ev.Text != "" {
			s.Message.Text = ev.Text
		}
		return true, nil
	case EventError:
		msg := ev.Message
		if msg == "" {
			msg = "provider signaled failure"
		}
		return true, &apperror.StreamingError{Message: msg}
	}
	return false, nil
}

func (s *State) exchange(complete bool) *Exchange {
	return &Exchange{
		Thinking: s.Thinking.Text,
		Message:  s.Message.Text,
		Complete: complete,
	}
}

// Consume drains one SSE exchange from r. It returns as soon as the
// provider signals message_complete (or an error event), accepts the
// bare "[DONE]" terminator, and treats an early EOF as a best-effort
// partial result rather than a failure. Cancelling ctx aborts the read
// and discards the partial state.
func Consume(ctx context.Context, r io.Reader, cb Callbacks) (*Exchange, error) {
	state := &State{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, dataPrefix)
		if data == "[DONE]" {
			return state.exchange(true), nil
		}

		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			// Skip malformed frames; the cumulative text on the next
			// frame covers anything a dropped token carried.
			continue
		}

		done, err := state.Apply(ev, cb)
		if err != nil {
			return nil, err
		}
		if done {
			return state.exchange(true), nil
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Transport died mid-exchange. Partial output beats none for a
		// chat UI, so hand back whatever accumulated.
		return state.exchange(false), nil
	}
	return state.exchange(false), nil
}
