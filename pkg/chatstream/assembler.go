package chatstream

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/sse"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/utils"
)

const logPayloadLen = 120

type metaPayload struct {
	ChatRoomID json.RawMessage `json:"chatRoomId"`
}

type errorPayload struct {
	Message *string `json:"message"`
}

type contentPayload struct {
	Content *string `json:"content"`
}

// Assembler converts a chunked byte stream into ordered frames. It holds the
// per-session parse state: the partial line tail, the sticky event type, and
// the accumulated content.
//
// An Assembler is used by a single reader loop and is not safe for
// concurrent use.
type Assembler struct {
	splitter *sse.Splitter
	logger   *slog.Logger

	// sticky classifier applied to the next non-empty data line
	current     eventType
	currentName string

	content strings.Builder

	halted    bool
	cancelled bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used to report dropped frames.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger.OrNop(l)
	}
}

// NewAssembler creates an Assembler for one stream session.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		splitter: sse.NewSplitter(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Feed consumes one transport chunk and returns the frames completed by it,
// in stream order. Chunks need not align with lines or characters.
//
// When an error event is reached Feed stops at it: a well-formed one is
// returned as the last FrameError, a malformed one as a *ProtocolError
// alongside the frames that preceded it. Either way the Assembler halts and
// every later call is a no-op.
func (a *Assembler) Feed(chunk []byte) ([]Frame, error) {
	if a.stopped() {
		return nil, nil
	}
	return a.processLines(a.splitter.Feed(chunk))
}

// Finalize processes a trailing line left without a terminator once the
// transport reports completion, then clears the buffer.
func (a *Assembler) Finalize() ([]Frame, error) {
	line, ok := a.splitter.Flush()
	if !ok || a.stopped() {
		return nil, nil
	}
	return a.processLines([]string{line})
}

// Cancel stops the Assembler. Frames already returned stay valid; later Feed
// and Finalize calls return nothing.
func (a *Assembler) Cancel() {
	a.cancelled = true
}

// Halted reports whether an error event ended the stream.
func (a *Assembler) Halted() bool {
	return a.halted
}

// Cancelled reports whether Cancel was called.
func (a *Assembler) Cancelled() bool {
	return a.cancelled
}

// Content returns the concatenation of every content fragment seen so far.
func (a *Assembler) Content() string {
	return a.content.String()
}

// Buffered reports the length of the pending partial line.
func (a *Assembler) Buffered() int {
	return a.splitter.Buffered()
}

func (a *Assembler) stopped() bool {
	return a.halted || a.cancelled
}

func (a *Assembler) processLines(lines []string) ([]Frame, error) {
	var frames []Frame

	for _, raw := range lines {
		frame, ok, err := a.processLine(raw)
		if err != nil {
			a.halted = true
			return frames, err
		}
		if !ok {
			continue
		}

		frames = append(frames, frame)
		if frame.Kind == FrameError {
			a.halted = true
			return frames, nil
		}
	}

	return frames, nil
}

func (a *Assembler) processLine(raw string) (Frame, bool, error) {
	line := sse.Classify(raw)

	switch line.Kind {
	case sse.LineEvent:
		a.current = parseEventType(line.Value)
		a.currentName = line.Value
		return Frame{}, false, nil

	case sse.LineData:
		if line.Value == "" {
			return Frame{}, false, nil
		}

		ev := StreamEvent{EventType: a.currentName, RawPayload: line.Value}
		kind := a.current.frameKind()

		// The sticky type covers exactly one data line.
		a.current = eventNone
		a.currentName = ""

		frame, err := decode(kind, ev)
		if err != nil {
			return Frame{}, false, a.handleFailure(kind, ev, err)
		}
		if frame.Kind == FrameContent {
			a.content.WriteString(frame.Content)
		}
		return frame, true, nil

	default:
		return Frame{}, false, nil
	}
}

// handleFailure applies the failure policy for kind. A nil return means the
// frame was dropped.
func (a *Assembler) handleFailure(kind FrameKind, ev StreamEvent, err error) error {
	switch FailurePolicyFor(kind) {
	case PolicyFailFast:
		a.logger.Warn("malformed error frame",
			"payload", utils.Truncate(ev.RawPayload, logPayloadLen),
			"error", err,
		)
		return &ProtocolError{Payload: ev.RawPayload, Err: err}

	default:
		a.logger.Debug("dropping malformed frame",
			"kind", kind.String(),
			"event", ev.EventType,
			"payload", utils.Truncate(ev.RawPayload, logPayloadLen),
			"missing_field", IsMissingField(err),
			"error", err,
		)
		return nil
	}
}

func decode(kind FrameKind, ev StreamEvent) (Frame, error) {
	data := []byte(ev.RawPayload)

	switch kind {
	case FrameMeta:
		var p metaPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Frame{}, &MalformedFrameError{Kind: kind, Payload: ev.RawPayload, Err: err}
		}
		id, ok := roomID(p.ChatRoomID)
		if !ok {
			return Frame{}, &MalformedFrameError{Kind: kind, Payload: ev.RawPayload, Err: errMissingField("chatRoomId")}
		}
		return Frame{Kind: FrameMeta, ChatRoomID: id, Event: ev}, nil

	case FrameError:
		var p errorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Frame{}, &MalformedFrameError{Kind: kind, Payload: ev.RawPayload, Err: err}
		}
		if p.Message == nil || *p.Message == "" {
			return Frame{}, &MalformedFrameError{Kind: kind, Payload: ev.RawPayload, Err: errMissingField("message")}
		}
		return Frame{Kind: FrameError, ErrorMessage: *p.Message, Event: ev}, nil

	case FrameContent:
		var p contentPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Frame{}, &MalformedFrameError{Kind: kind, Payload: ev.RawPayload, Err: err}
		}
		if p.Content == nil {
			return Frame{}, &MalformedFrameError{Kind: kind, Payload: ev.RawPayload, Err: errMissingField("content")}
		}
		return Frame{Kind: FrameContent, Content: *p.Content, Event: ev}, nil

	default:
		return Frame{Kind: FrameUnknown, Event: ev}, nil
	}
}

// roomID accepts the room id as a JSON string or number.
func roomID(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}

	return "", false
}
