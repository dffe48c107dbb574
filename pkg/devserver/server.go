// Package devserver is a local stand-in for the admin panel's assistant
// backend. It speaks the same streaming chat protocol so the CLI and client
// can be exercised without the real platform.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/sse"
)

// ChatPath is the streaming chat route.
const ChatPath = "/api/ai/chat"

// Config is the dev server configuration.
type Config struct {
	ListenAddr string

	// JWTSecret enables HS256 validation of bearer tokens.
	JWTSecret string

	// FragmentDelay paces content events to imitate a model.
	FragmentDelay time.Duration

	// Responder answers messages. Defaults to EchoResponder.
	Responder Responder
}

type chatRequest struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

type metaPayload struct {
	ChatRoomID string `json:"chatRoomId"`
}

type contentPayload struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the development assistant server.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new dev server.
func NewServer(config Config, log *slog.Logger) *Server {
	if config.Responder == nil {
		config.Responder = EchoResponder{}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger.OrNop(log),
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post(ChatPath, requireBearer(config.JWTSecret), s.handleChat)

	return s
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting development assistant server",
		"listen", s.config.ListenAddr,
		"jwt", s.config.JWTSecret != "",
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid JSON body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "message is required"})
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID = uuid.NewString()
	}

	subject, _ := c.Locals(localsSubject).(string)
	s.logger.Debug("chat request",
		"room_id", roomID,
		"new_room", req.RoomID == "",
		"subject", subject,
		"message_len", len(req.Message),
	)

	// The request context is recycled once the handler returns.
	fragments, replyErr := s.config.Responder.Respond(context.Background(), roomID, req.Message)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// io.Pipe gives per-event flushing: each write blocks until fasthttp
	// has sent it as a chunk.
	pr, pw := io.Pipe()
	go s.writeStream(pw, roomID, fragments, replyErr)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) writeStream(pw *io.PipeWriter, roomID string, fragments []string, replyErr error) {
	w := sse.NewWriter(pw)

	err := s.emit(w, "meta", metaPayload{ChatRoomID: roomID})
	for i := 0; err == nil && i < len(fragments); i++ {
		if s.config.FragmentDelay > 0 {
			time.Sleep(s.config.FragmentDelay)
		}
		err = s.emit(w, "", contentPayload{Content: fragments[i]})
	}
	if err == nil && replyErr != nil {
		msg := replyErr.Error()
		var re *ReplyError
		if errors.As(replyErr, &re) {
			msg = re.Message
		}
		err = s.emit(w, "error", errorPayload{Message: msg})
	}

	if err != nil {
		s.logger.Debug("chat stream aborted", "room_id", roomID, "error", err)
		pw.CloseWithError(err)
		return
	}
	pw.Close()
}

func (s *Server) emit(w *sse.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.WriteEvent(event, data)
}
