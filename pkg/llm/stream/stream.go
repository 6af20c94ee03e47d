package stream

// Server-sent event protocol spoken by the inference service for chat.
// Two logical channels (hidden "thinking" and user-visible "message")
// are multiplexed over one transport; each event carries the channel,
// the incremental token, and the cumulative text so far.

type EventType string

const (
	EventThinkingStart    EventType = "thinking_start"
	EventThinking         EventType = "thinking"
	EventThinkingComplete EventType = "thinking_complete"
	EventMessageStart     EventType = "message_start"
	EventMessage          EventType = "message"
	EventMessageComplete  EventType = "message_complete"
	EventDone             EventType = "done"
	EventError            EventType = "error"
)

// Event is one decoded frame.
type Event struct {
	Type    EventType `json:"type"`
	Token   string    `json:"token,omitempty"`
	Text    string    `json:"text,omitempty"`
	Message string    `json:"message,omitempty"`
	ChatId  string    `json:"chat_id,omitempty"`
}

// normalizeType folds the naming drift between transports into the
// canonical event set.
func normalizeType(t EventType) EventType {
	switch t {
	case "thinking_update":
		return EventThinking
	case "message_update":
		return EventMessage
	case EventDone:
		return EventMessageComplete
	}
	return t
}

type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseStarted
	PhaseAccumulating
	PhaseComplete
)

// ChannelState tracks one logical channel through
// not-started → started → accumulating → complete.
type ChannelState struct {
	Phase Phase
	Text  string
}

// Callbacks receive per-token progress. They run on the read loop and
// must not block; defer heavy work until the exchange finishes.
type Callbacks struct {
	OnThinkingToken func(token, cumulative string)
	OnMessageToken  func(token, cumulative string)
}

// Exchange is the reconciled outcome of one streamed chat turn.
type Exchange struct {
	Thinking string
	Message  string
	// Complete is false when the transport ended before the provider
	// signaled message_complete; the accumulated text is best-effort.
	Complete bool
}
