// Package chatstream assembles the assistant's streamed chat response into
// ordered, typed frames.
//
// The Assembler is pure: it never touches a transcript or UI. Callers feed it
// network chunks and apply the returned frames with their own reducer
// (see pkg/conversation).
package chatstream

// FrameKind identifies the meaning of a decoded frame.
type FrameKind int

const (
	// FrameUnknown is a data line under an event type this client does not
	// understand. Reducers ignore it.
	FrameUnknown FrameKind = iota

	// FrameMeta carries the chat room id assigned by the server.
	FrameMeta

	// FrameError carries a server reported failure. It is terminal.
	FrameError

	// FrameContent carries one fragment of the assistant's answer.
	FrameContent
)

func (k FrameKind) String() string {
	switch k {
	case FrameMeta:
		return "meta"
	case FrameError:
		return "error"
	case FrameContent:
		return "content"
	default:
		return "unknown"
	}
}

// StreamEvent is a data line paired with the event type that was sticky
// when it arrived. An empty EventType is the default content event.
type StreamEvent struct {
	EventType  string
	RawPayload string
}

// Frame is the decoded form of a StreamEvent. Only the field matching Kind
// is populated.
type Frame struct {
	Kind         FrameKind
	ChatRoomID   string
	ErrorMessage string
	Content      string

	// Event is the line the frame was decoded from.
	Event StreamEvent
}

// eventType is the sticky classifier set by "event:" lines.
type eventType int

const (
	eventNone eventType = iota
	eventMeta
	eventError
	eventOther
)

func parseEventType(name string) eventType {
	switch name {
	case "":
		return eventNone
	case "meta":
		return eventMeta
	case "error":
		return eventError
	default:
		return eventOther
	}
}

func (t eventType) frameKind() FrameKind {
	switch t {
	case eventNone:
		return FrameContent
	case eventMeta:
		return FrameMeta
	case eventError:
		return FrameError
	default:
		return FrameUnknown
	}
}
