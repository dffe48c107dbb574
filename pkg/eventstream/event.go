package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after an assistant exchange reaches a
	// terminal state and its messages are persisted.
	EventTypeTurnCompleted = "edrila.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for a finished turn.
type TurnCompletedEvent struct {
	SchemaVersion int           `json:"schema_version"`
	EventType     string        `json:"event_type"`
	EventID       string        `json:"event_id"`
	EmittedAt     time.Time     `json:"emitted_at"`
	Source        EventSource   `json:"source"`
	RoomID        string        `json:"room_id"`
	Outcome       string        `json:"outcome"`
	Error         string        `json:"error,omitempty"`
	Meta          TurnMeta      `json:"meta"`
	Messages      []TurnMessage `json:"messages"`
}

// EventSource identifies where the turn originated.
type EventSource struct {
	Client   string `json:"client"`
	Endpoint string `json:"endpoint,omitempty"`
}

// TurnMeta captures exchange lifecycle metadata for the event.
type TurnMeta struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Frames      int       `json:"frames"`
}

// TurnMessage is one sealed transcript message.
type TurnMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurnCompletedEvent returns an event with the envelope fields set and a
// fresh event id.
func NewTurnCompletedEvent(roomID string, emittedAt time.Time) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     emittedAt.UTC(),
		RoomID:        roomID,
	}
}

// MessagesFrom converts sealed transcript messages for an event payload.
func MessagesFrom(msgs []conversation.Message) []TurnMessage {
	out := make([]TurnMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, TurnMessage{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC(),
		})
	}
	return out
}
