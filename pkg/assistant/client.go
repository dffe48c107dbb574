// Package assistant is the client for the admin panel's AI assistant chat
// endpoint. It posts the user's message, reads the streamed answer, and
// drives a conversation.Session with the decoded frames.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/chatstream"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
)

const (
	defaultChunkSize = 4 * 1024
	defaultTimeout   = 5 * time.Minute
	maxErrorBody     = 4 * 1024
)

// Config configures a Client.
type Config struct {
	// Endpoint is the full URL of the streaming chat endpoint.
	Endpoint string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds a whole exchange, including reading the stream.
	// Ignored when HTTPClient is set.
	Timeout time.Duration

	// ChunkSize is the size of each read from the response body.
	ChunkSize int

	// Tap, when set, receives a verbatim copy of the response body.
	Tap io.Writer

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Request is the JSON body posted to the chat endpoint.
type Request struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId,omitempty"`
}

// Result summarizes a finished exchange.
type Result struct {
	State    conversation.State
	RoomID   string
	Content  string
	Frames   int
	Duration time.Duration
}

// Client talks to the assistant chat endpoint.
type Client struct {
	endpoint  string
	token     string
	chunkSize int
	tap       io.Writer
	http      *http.Client
	logger    *slog.Logger
}

// NewClient validates c and returns a Client.
func NewClient(c Config) (*Client, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing assistant endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("assistant endpoint must be an http(s) URL, got %q", c.Endpoint)
	}

	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			// answers stream slowly
			Timeout: timeout,
		}
	}

	return &Client{
		endpoint:  c.Endpoint,
		token:     c.Token,
		chunkSize: c.ChunkSize,
		tap:       c.Tap,
		http:      httpClient,
		logger:    logger.OrNop(c.Logger),
	}, nil
}

// Submit posts text for the session's room and streams the answer into s.
//
// The returned error is a *TransportError, a *chatstream.ProtocolError, or a
// *conversation.ServerError, and always matches s.Err(). Cancelling ctx
// between chunks stops reading, freezes the partial answer, and returns a
// StateCancelled result with a nil error.
func (c *Client) Submit(ctx context.Context, s *conversation.Session, text string) (*Result, error) {
	start := time.Now()

	err := c.exchange(ctx, s, text)
	if err != nil {
		s.Fail(err)
	}

	res := &Result{
		State:    s.State(),
		RoomID:   s.RoomID(),
		Content:  s.Content(),
		Frames:   s.Frames(),
		Duration: time.Since(start),
	}

	c.logger.Debug("assistant exchange finished",
		"state", res.State.String(),
		"room_id", res.RoomID,
		"frames", res.Frames,
		"duration", res.Duration,
	)

	return res, s.Err()
}

func (c *Client) exchange(ctx context.Context, s *conversation.Session, text string) error {
	body, err := json.Marshal(Request{Message: text, RoomID: s.RoomID()})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("sending chat message",
		"endpoint", c.endpoint,
		"room_id", s.RoomID(),
		"message_len", len(text),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		if cancelled(ctx) {
			s.Cancel()
			return nil
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	// http.Client wraps Body when a Timeout is set, so NoBody never shows
	// up here. ContentLength and the byte count in read catch it instead.
	if resp.Body == nil || resp.ContentLength == 0 {
		return &TransportError{Err: ErrMissingBody}
	}

	var src io.Reader = resp.Body
	if c.tap != nil {
		src = io.TeeReader(resp.Body, c.tap)
	}

	return c.read(ctx, s, src)
}

// read is the single reader loop for one session. Each Read is the only
// place it blocks; cancellation is checked between chunks.
func (c *Client) read(ctx context.Context, s *conversation.Session, src io.Reader) error {
	asm := chatstream.NewAssembler(chatstream.WithLogger(c.logger))
	buf := make([]byte, c.chunkSize)
	total := 0

	for {
		if cancelled(ctx) {
			asm.Cancel()
			s.Cancel()
			return nil
		}

		n, readErr := src.Read(buf)
		total += n
		if n > 0 {
			frames, err := asm.Feed(buf[:n])
			apply(s, frames)
			if err != nil {
				return err
			}
			if asm.Halted() {
				// the error frame already ended the session
				return nil
			}
		}

		switch {
		case readErr == nil:
			continue

		case errors.Is(readErr, io.EOF):
			if total == 0 {
				return &TransportError{Err: ErrMissingBody}
			}
			frames, err := asm.Finalize()
			apply(s, frames)
			if err != nil {
				return err
			}
			s.Complete()
			return nil

		case cancelled(ctx):
			asm.Cancel()
			s.Cancel()
			return nil

		default:
			return &TransportError{Err: fmt.Errorf("reading stream: %w", readErr)}
		}
	}
}

func apply(s *conversation.Session, frames []chatstream.Frame) {
	for _, f := range frames {
		s.Apply(f)
	}
}

// cancelled reports caller cancellation. A deadline is a transport timeout,
// not a cancellation.
func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}
