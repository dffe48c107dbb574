package assistant

import (
	"errors"
	"fmt"
)

// ErrMissingBody is wrapped by a TransportError when a successful response
// has no readable body.
var ErrMissingBody = errors.New("response has no body")

// TransportError reports a network failure, a non-2xx status, or a missing
// response body. It is fatal for the session and never retried here.
type TransportError struct {
	// StatusCode is set when the server answered with a non-2xx status.
	StatusCode int

	// Body is the start of the error response body, if any.
	Body string

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body == "" {
			return fmt.Sprintf("assistant returned status %d", e.StatusCode)
		}
		return fmt.Sprintf("assistant returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("assistant request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
