package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid room ID format")

	ErrDuplicateNumber = errors.New("a room with this room number already exists")
)
