// Package storage defines the transcript store used to persist and resume
// assistant chat rooms.
package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
)

// ErrEmptyRoomID is returned when messages are appended without a room.
var ErrEmptyRoomID = errors.New("room id is required")

// Room summarizes one stored chat room.
type Room struct {
	ID        string
	Messages  int
	UpdatedAt time.Time
}

// Driver defines the interface for persisting and retrieving transcripts in a
// storage backend.
type Driver interface {
	// AppendMessages appends msgs to the room's transcript in order. Messages
	// whose ID is already stored are skipped, so a retried append is a no-op.
	AppendMessages(ctx context.Context, roomID string, msgs ...conversation.Message) error

	// Messages returns the room's transcript oldest first. It returns a
	// NotFoundError when the room has no messages.
	Messages(ctx context.Context, roomID string) ([]conversation.Message, error)

	// Rooms returns all rooms, most recently updated first.
	Rooms(ctx context.Context) ([]Room, error)

	// Close closes the store and releases any resources.
	Close() error
}

// LoadTranscript reads a room into a new transcript.
func LoadTranscript(ctx context.Context, d Driver, roomID string) (*conversation.Transcript, error) {
	msgs, err := d.Messages(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return conversation.NewTranscript(msgs...), nil
}

// SortRooms orders rooms most recently updated first, breaking ties by id.
func SortRooms(rooms []Room) {
	slices.SortFunc(rooms, func(a, b Room) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
