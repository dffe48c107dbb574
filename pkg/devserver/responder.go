package devserver

import (
	"context"
	"strings"
)

// FailPrefix makes EchoResponder answer with an error event. The rest of the
// message becomes the error text.
const FailPrefix = "/fail"

// Responder produces the answer for one message as content fragments. A
// non-nil error is sent to the client as an error event after any fragments.
type Responder interface {
	Respond(ctx context.Context, roomID, message string) ([]string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, roomID, message string) ([]string, error)

func (f ResponderFunc) Respond(ctx context.Context, roomID, message string) ([]string, error) {
	return f(ctx, roomID, message)
}

// ReplyError is returned by a Responder to send an error event.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string {
	return e.Message
}

// EchoResponder streams the message back word by word.
type EchoResponder struct{}

func (EchoResponder) Respond(_ context.Context, _ string, message string) ([]string, error) {
	if rest, ok := strings.CutPrefix(message, FailPrefix); ok {
		reason := strings.TrimSpace(rest)
		if reason == "" {
			reason = "the assistant is unavailable"
		}
		return nil, &ReplyError{Message: reason}
	}

	return Fragments("You said: " + message), nil
}

// Fragments splits s after each space so that joining the fragments gives s
// back exactly.
func Fragments(s string) []string {
	var out []string
	for s != "" {
		i := strings.IndexByte(s, ' ')
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
	}
	return out
}
