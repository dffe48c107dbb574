// Package inmemory provides a map-backed storage driver for tests and for
// sessions that should not outlive the process.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
)

type room struct {
	messages []conversation.Message
	ids      map[string]struct{}
}

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of rooms
	mu sync.RWMutex

	// rooms is keyed by room id
	rooms map[string]*room
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		rooms: make(map[string]*room),
	}
}

// AppendMessages appends msgs to the room, skipping ids already stored.
func (s *Driver) AppendMessages(_ context.Context, roomID string, msgs ...conversation.Message) error {
	if roomID == "" {
		return storage.ErrEmptyRoomID
	}
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		r = &room{ids: make(map[string]struct{})}
		s.rooms[roomID] = r
	}

	for _, m := range msgs {
		if _, dup := r.ids[m.ID]; dup {
			continue
		}
		r.ids[m.ID] = struct{}{}
		r.messages = append(r.messages, m)
	}
	return nil
}

// Messages returns a copy of the room's transcript.
func (s *Driver) Messages(_ context.Context, roomID string) ([]conversation.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil, storage.NotFoundError{RoomID: roomID}
	}
	return slices.Clone(r.messages), nil
}

// Rooms returns all rooms, most recently updated first.
func (s *Driver) Rooms(_ context.Context) ([]storage.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]storage.Room, 0, len(s.rooms))
	for id, r := range s.rooms {
		rooms = append(rooms, storage.Room{
			ID:        id,
			Messages:  len(r.messages),
			UpdatedAt: r.messages[len(r.messages)-1].Timestamp,
		})
	}

	storage.SortRooms(rooms)
	return rooms, nil
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}
