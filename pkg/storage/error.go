package storage

import "errors"

// NotFoundError is returned when a room doesn't exist in the store.
type NotFoundError struct {
	RoomID string
}

func (e NotFoundError) Error() string {
	if e.RoomID == "" {
		return "room not found"
	}

	return "room not found: " + e.RoomID
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
