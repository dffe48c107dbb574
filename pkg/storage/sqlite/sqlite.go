// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_room_seq ON messages (room_id, seq);
`

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (and creates if needed) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to ":memory:" is a separate database
	if dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// AppendMessages appends msgs after the room's last stored message in one
// transaction.
func (d *Driver) AppendMessages(ctx context.Context, roomID string, msgs ...conversation.Message) error {
	if roomID == "" {
		return storage.ErrEmptyRoomID
	}
	if len(msgs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE room_id = ?`, roomID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("reading last seq for room %s: %w", roomID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, room_id, seq, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		seq++
		_, err := stmt.ExecContext(ctx, m.ID, roomID, seq, string(m.Role), m.Content, m.Timestamp.UnixNano())
		if err != nil {
			return fmt.Errorf("inserting message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Messages returns the room's transcript ordered by sequence.
func (d *Driver) Messages(ctx context.Context, roomID string) ([]conversation.Message, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, role, content, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY seq`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying room %s: %w", roomID, err)
	}
	defer rows.Close()

	var msgs []conversation.Message
	for rows.Next() {
		var (
			m    conversation.Message
			role string
			ts   int64
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = conversation.Role(role)
		m.Timestamp = time.Unix(0, ts).UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(msgs) == 0 {
		return nil, storage.NotFoundError{RoomID: roomID}
	}
	return msgs, nil
}

// Rooms returns all rooms, most recently updated first.
func (d *Driver) Rooms(ctx context.Context) ([]storage.Room, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT room_id, COUNT(*), MAX(created_at)
		FROM messages
		GROUP BY room_id`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []storage.Room
	for rows.Next() {
		var (
			r  storage.Room
			ts int64
		)
		if err := rows.Scan(&r.ID, &r.Messages, &ts); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		r.UpdatedAt = time.Unix(0, ts).UTC()
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	storage.SortRooms(rooms)
	return rooms, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	if err := d.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
