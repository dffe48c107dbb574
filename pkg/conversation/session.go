package conversation

import (
	"strings"
	"time"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/chatstream"
)

// NoticeFormatter renders the assistant message shown in place of an empty
// answer when the server reports an error.
type NoticeFormatter func(serverMessage string) string

// DefaultNotice is the NoticeFormatter used when none is configured.
func DefaultNotice(serverMessage string) string {
	return "Sorry, the assistant ran into a problem: " + serverMessage
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithNoticeFormatter overrides how error notices are worded.
func WithNoticeFormatter(f NoticeFormatter) SessionOption {
	return func(s *Session) {
		s.notice = f
	}
}

// WithContentHook registers fn to be called with every applied content
// fragment, in order. Used to render the answer as it streams.
func WithContentHook(fn func(fragment string)) SessionOption {
	return func(s *Session) {
		s.onContent = fn
	}
}

// Session is the reducer for one request/response exchange. It owns the open
// assistant placeholder and seals it into the transcript exactly once, when
// the session reaches a terminal state.
//
// Rules:
//   - meta: the first room id wins; a room id supplied up front wins over any meta.
//   - content: appended to the open assistant message.
//   - error frame: an empty placeholder is replaced by a notice message; a
//     partial answer is sealed unchanged and the error is reported by Err.
//   - transport or protocol failure: an empty placeholder is removed; a
//     partial answer is sealed unchanged; the error is reported by Err.
//   - cancel: a partial answer is sealed unchanged, an empty one is removed.
//   - complete: the answer is sealed, an empty one is removed.
type Session struct {
	transcript *Transcript

	roomID  string
	content strings.Builder
	opened  time.Time

	state  State
	err    error
	frames int

	// turn holds the messages this session sealed, user message first
	turn []Message

	now       func() time.Time
	notice    NoticeFormatter
	onContent func(string)
	onDone    func(*Session)
}

// NewSession opens a session that writes into t. roomID may be empty when the
// server is expected to assign one.
func NewSession(t *Transcript, roomID string, opts ...SessionOption) *Session {
	s := &Session{
		transcript: t,
		roomID:     roomID,
		now:        time.Now,
		notice:     DefaultNotice,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.opened = s.now()
	return s
}

// Apply reduces one frame. Frames must be applied in emission order. Apply
// is a no-op once the session is terminal.
func (s *Session) Apply(f chatstream.Frame) {
	if s.state.Terminal() {
		return
	}
	s.frames++

	switch f.Kind {
	case chatstream.FrameMeta:
		if s.roomID == "" {
			s.roomID = f.ChatRoomID
		}

	case chatstream.FrameContent:
		if f.Content == "" {
			return
		}
		s.content.WriteString(f.Content)
		if s.onContent != nil {
			s.onContent(f.Content)
		}

	case chatstream.FrameError:
		if s.content.Len() == 0 {
			s.seal(NewMessage(RoleAssistant, s.notice(f.ErrorMessage), s.now()))
		} else {
			s.sealAnswer()
		}
		s.finish(StateErrored, &ServerError{Message: f.ErrorMessage})

	default:
		// unknown frames carry nothing for the transcript
	}
}

// Complete marks the stream as ended normally.
func (s *Session) Complete() {
	if s.state.Terminal() {
		return
	}
	s.sealAnswer()
	s.finish(StateCompleted, nil)
}

// Fail ends the session after a transport or protocol failure.
func (s *Session) Fail(err error) {
	if s.state.Terminal() {
		return
	}
	s.sealAnswer()
	s.finish(StateErrored, err)
}

// Cancel ends the session because the caller stopped reading. Whatever was
// already reduced is kept.
func (s *Session) Cancel() {
	if s.state.Terminal() {
		return
	}
	s.sealAnswer()
	s.finish(StateCancelled, nil)
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// Err returns the error that ended the session, or nil.
func (s *Session) Err() error {
	return s.err
}

// RoomID returns the resolved chat room id.
func (s *Session) RoomID() string {
	return s.roomID
}

// Content returns the assistant content reduced so far.
func (s *Session) Content() string {
	return s.content.String()
}

// Frames returns the number of frames applied.
func (s *Session) Frames() int {
	return s.frames
}

// Open returns the in-flight assistant message while streaming.
func (s *Session) Open() (Message, bool) {
	if s.state.Terminal() {
		return Message{}, false
	}
	return Message{Role: RoleAssistant, Content: s.content.String(), Timestamp: s.opened}, true
}

// Turn returns the messages sealed by this session, user message first.
func (s *Session) Turn() []Message {
	out := make([]Message, len(s.turn))
	copy(out, s.turn)
	return out
}

func (s *Session) sealAnswer() {
	if s.content.Len() == 0 {
		return
	}
	s.seal(NewMessage(RoleAssistant, s.content.String(), s.opened))
}

func (s *Session) seal(m Message) {
	s.transcript.Append(m)
	s.turn = append(s.turn, m)
}

func (s *Session) finish(state State, err error) {
	s.state = state
	s.err = err
	if s.onDone != nil {
		s.onDone(s)
	}
}
