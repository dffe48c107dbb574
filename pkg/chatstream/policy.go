package chatstream

// FailurePolicy decides what a decode failure on a frame does to the stream.
type FailurePolicy int

const (
	// PolicySwallow drops the frame, logs it, and keeps reading.
	PolicySwallow FailurePolicy = iota

	// PolicyFailFast aborts the stream with a ProtocolError.
	PolicyFailFast
)

func (p FailurePolicy) String() string {
	if p == PolicyFailFast {
		return "fail-fast"
	}
	return "swallow"
}

// FailurePolicyFor returns the failure policy for frames of the given kind.
// Content, meta and unknown frames stream best-effort. Error frames exist
// only to report failure, so a broken one must not be silently dropped.
func FailurePolicyFor(kind FrameKind) FailurePolicy {
	if kind == FrameError {
		return PolicyFailFast
	}
	return PolicySwallow
}
