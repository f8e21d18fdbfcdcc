package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotConflict means the requested interval overlaps a non-cancelled
	// booking on the same room and date.
	ErrSlotConflict = errors.New("room is already booked for this time slot")

	// ErrInvalidTransition covers every status change other than
	// booked->completed and booked->cancelled.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
