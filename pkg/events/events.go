package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Event is the envelope written to the booking-events topic. Key by room id
// so events for one room stay ordered on a single partition.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// BookingPayload is the wire form of a booking inside an event.
type BookingPayload struct {
	BookingID  string `json:"booking_id"`
	RoomID     string `json:"room_id"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
}
