// Package sse provides a minimal, purpose-built reader and writer for the
// line-oriented event stream returned by the assistant chat endpoint.
//
// The stream borrows the "event:" and "data:" field names from Server-Sent
// Events but not its framing: every line stands on its own, and a blank line
// carries no meaning. Grouping lines into frames is left to the caller
// (see pkg/chatstream).
package sse

import "strings"

const (
	eventPrefix = "event: "
	dataPrefix  = "data: "
)

// LineKind classifies a single complete line of the stream.
type LineKind int

const (
	// LineOther is any line that is not understood. It is ignored so that
	// new fields can be added upstream without breaking clients.
	LineOther LineKind = iota

	// LineBlank is an empty or whitespace-only line.
	LineBlank

	// LineEvent is an "event: <type>" line.
	LineEvent

	// LineData is a "data: <payload>" line.
	LineData
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineEvent:
		return "event"
	case LineData:
		return "data"
	default:
		return "other"
	}
}

// Line is a classified line. Value holds the trimmed remainder after the
// field prefix for LineEvent and LineData, and is empty otherwise.
type Line struct {
	Kind  LineKind
	Value string
}

// Classify maps one complete line, without its terminator, to a Line.
func Classify(raw string) Line {
	if strings.TrimSpace(raw) == "" {
		return Line{Kind: LineBlank}
	}

	if after, ok := strings.CutPrefix(raw, eventPrefix); ok {
		return Line{Kind: LineEvent, Value: strings.TrimSpace(after)}
	}

	if after, ok := strings.CutPrefix(raw, dataPrefix); ok {
		return Line{Kind: LineData, Value: strings.TrimSpace(after)}
	}

	return Line{Kind: LineOther}
}
