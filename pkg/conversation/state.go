package conversation

// State is the lifecycle state of a Session.
type State int

const (
	// StateStreaming means the response body is still being read.
	StateStreaming State = iota

	// StateCompleted means the stream ended normally without an error frame.
	StateCompleted

	// StateErrored means an error frame was received or the transport failed.
	StateErrored

	// StateCancelled means the caller stopped reading before the stream ended.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s != StateStreaming
}
