// Package conversation owns the chat transcript and the reducer that applies
// stream frames to it.
//
// The transcript outlives any single stream. A Session is opened per user
// submission and is the only writer to the transcript while it is active.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn. Messages in a Transcript are sealed and never
// change; the in-flight assistant message lives on the Session until sealed.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(role Role, content string, ts time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
}

// Transcript is the ordered list of sealed messages for one conversation.
type Transcript struct {
	messages []Message
}

// NewTranscript creates a transcript seeded with previously sealed messages,
// e.g. loaded from storage.
func NewTranscript(messages ...Message) *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, messages...)
	return t
}

// Append seals a message onto the end of the transcript.
func (t *Transcript) Append(m Message) {
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the sealed messages.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of sealed messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent sealed message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
