package sse

import "bytes"

// Splitter turns arbitrarily chunked bytes into complete lines.
//
//	┌──────────────┐   ┌──────────────────┐   ┌────────────────┐
//	│ network read │──▶│ Splitter.Feed()  │──▶│ complete lines │
//	└──────────────┘   └──────────────────┘   └────────────────┘
//	                            │
//	                            ▼
//	                   ┌──────────────────┐
//	                   │ partial tail buf │
//	                   └──────────────────┘
//
// Lines are split on '\n' and a trailing '\r' is dropped. The tail buffer
// never holds a '\n'. Because '\n' cannot appear inside a multi-byte UTF-8
// sequence, a character split across two chunks is always rejoined in the
// tail before its line is converted to a string.
type Splitter struct {
	buf []byte
}

// NewSplitter returns an empty Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Feed appends chunk to the pending tail and returns every line completed by
// it, in stream order. Only chunk is scanned for terminators, so the cost of
// a call is proportional to len(chunk) plus the lines it completes.
func (s *Splitter) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	var lines []string

	for {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			break
		}

		var line []byte
		if len(s.buf) > 0 {
			s.buf = append(s.buf, chunk[:i]...)
			line = s.buf
		} else {
			line = chunk[:i]
		}

		lines = append(lines, string(bytes.TrimSuffix(line, []byte{'\r'})))
		s.buf = s.buf[:0]
		chunk = chunk[i+1:]
	}

	s.buf = append(s.buf, chunk...)
	return lines
}

// Flush returns the unterminated tail, if any, and clears it.
func (s *Splitter) Flush() (string, bool) {
	if len(s.buf) == 0 {
		return "", false
	}

	line := string(bytes.TrimSuffix(s.buf, []byte{'\r'}))
	s.buf = s.buf[:0]
	return line, true
}

// Buffered reports the number of bytes held in the partial tail.
func (s *Splitter) Buffered() int {
	return len(s.buf)
}
