package chatstream

import (
	"errors"
	"fmt"
)

// errMissingField reports a well-formed JSON payload without the field its
// frame kind requires.
type errMissingField string

func (e errMissingField) Error() string {
	return fmt.Sprintf("missing %q field", string(e))
}

// MalformedFrameError describes a data line whose payload could not be
// decoded for its frame kind. Under PolicySwallow it is logged and dropped.
type MalformedFrameError struct {
	Kind    FrameKind
	Payload string
	Err     error
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed %s frame: %v", e.Kind, e.Err)
}

func (e *MalformedFrameError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when an error frame cannot be decoded or lacks
// its message. It is fatal for the stream.
type ProtocolError struct {
	Payload string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("assistant stream protocol error: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsMissingField reports whether err was caused by a payload lacking a
// required field rather than by invalid JSON.
func IsMissingField(err error) bool {
	var mf errMissingField
	return errors.As(err, &mf)
}
