package model

import (
	"time"
)

// Booking reserves one room for a contiguous wall-clock interval on a single
// calendar date. StartTime and EndTime are zero-padded "HH:MM" strings, so
// lexicographic order is chronological order and [StartTime, EndTime) is a
// half-open interval: a booking may start exactly when another ends.
type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID     string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	CustomerID string    `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	Date       time.Time `json:"date" bson:"date" validate:"required"`
	StartTime  string    `json:"start_time" bson:"start_time" validate:"required,wallclock"`
	EndTime    string    `json:"end_time" bson:"end_time" validate:"required,wallclock"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=booked completed cancelled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookingUpdate carries a partial reschedule. A nil/empty field is left
// unchanged; any change to room, date or times re-runs admission against the
// no-overlap invariant (excluding the booking itself).
type BookingUpdate struct {
	RoomID     string     `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID string     `json:"customer_id,omitempty" validate:"omitempty,mongodb"`
	Date       *time.Time `json:"date,omitempty" validate:"omitempty"`
	StartTime  string     `json:"start_time,omitempty" validate:"omitempty,wallclock"`
	EndTime    string     `json:"end_time,omitempty" validate:"omitempty,wallclock"`
}

// Slot is one bookable candidate interval on a given date.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DateOnly truncates a timestamp to UTC midnight. Bookings group by calendar
// date, so any time-of-day component stored incidentally on Date must be
// ignored when comparing.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports calendar-date equality regardless of time-of-day.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
