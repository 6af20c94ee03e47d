package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used for all domain events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted on the external bus. Internal async work
// uses the in-process pub/sub instead.
const (
	TypeDocumentIngested    = "DOCUMENT_INGESTED"
	TypeDocumentFailed      = "DOCUMENT_FAILED"
	TypeGenerationCompleted = "GENERATION_COMPLETED"
	TypeChatExchangeSaved   = "CHAT_EXCHANGE_SAVED"
)
