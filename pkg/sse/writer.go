package sse

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// ErrMultilineData is returned when a payload contains a line break, which
// would split it into several data lines.
var ErrMultilineData = errors.New("sse: data payload contains a line break")

// Writer encodes events in the wire format read by Classify: an optional
// "event: " line, one "data: " line, and a blank separator line.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer that buffers into w. Each WriteEvent flushes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteEvent writes one event. An empty event name writes a bare data line.
func (w *Writer) WriteEvent(event string, data []byte) error {
	if bytes.ContainsAny(data, "\r\n") {
		return ErrMultilineData
	}

	if event != "" {
		w.w.WriteString("event: ")
		w.w.WriteString(event)
		w.w.WriteByte('\n')
	}
	w.w.WriteString("data: ")
	w.w.Write(data)
	w.w.WriteString("\n\n")

	return w.w.Flush()
}
