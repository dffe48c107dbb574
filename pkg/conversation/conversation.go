package conversation

import "sync"

// Conversation is a transcript plus the rule that at most one Session
// streams into it at a time.
type Conversation struct {
	mu         sync.Mutex
	transcript *Transcript
	roomID     string
	active     *Session
}

// New creates a conversation. roomID is empty for a conversation the server
// has not seen yet.
func New(roomID string, t *Transcript) *Conversation {
	if t == nil {
		t = NewTranscript()
	}
	return &Conversation{
		transcript: t,
		roomID:     roomID,
	}
}

// Begin seals the user's message into the transcript and opens a Session for
// the assistant's answer. It returns ErrSessionActive while a previous
// session is still streaming.
func (c *Conversation) Begin(text string, opts ...SessionOption) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, ErrSessionActive
	}

	s := NewSession(c.transcript, c.roomID, opts...)
	s.seal(NewMessage(RoleUser, text, s.opened))
	s.onDone = c.release

	c.active = s
	return s, nil
}

// RoomID returns the conversation's room id, learned from the first session
// that resolved one.
func (c *Conversation) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Transcript returns the conversation transcript.
func (c *Conversation) Transcript() *Transcript {
	return c.transcript
}

// Active reports whether a session is streaming.
func (c *Conversation) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Conversation) release(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == s {
		c.active = nil
	}
	if c.roomID == "" {
		c.roomID = s.RoomID()
	}
}
