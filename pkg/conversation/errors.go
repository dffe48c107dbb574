package conversation

import (
	"errors"
	"fmt"
)

// ErrSessionActive is returned by Begin while another session is streaming.
var ErrSessionActive = errors.New("a chat session is already active for this conversation")

// ServerError is the error carried by an error frame.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("assistant error: %s", e.Message)
}
