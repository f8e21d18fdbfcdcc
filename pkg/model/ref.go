package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoomRef is a tagged reference to a room: either a bare id or an expanded
// document. Which of the two it is gets decided explicitly at the boundary,
// never inferred from the runtime shape of a loosely-typed payload.
type RoomRef struct {
	id   string
	room *Room
}

func RoomReference(id string) RoomRef {
	return RoomRef{id: id}
}

func ExpandedRoom(room *Room) RoomRef {
	return RoomRef{id: room.ID, room: room}
}

func (r RoomRef) ID() string { return r.id }

// Room returns the expanded document, nil when the reference was not resolved.
func (r RoomRef) Room() *Room { return r.room }

func (r RoomRef) IsExpanded() bool { return r.room != nil }

func (r RoomRef) MarshalJSON() ([]byte, error) {
	if r.room != nil {
		return json.Marshal(r.room)
	}
	return json.Marshal(r.id)
}

func (r *RoomRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = RoomReference(id)
		return nil
	}
	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return fmt.Errorf("room reference must be an id string or a room object: %w", err)
	}
	*r = ExpandedRoom(&room)
	return nil
}

// CustomerRef mirrors RoomRef for the booking's customer.
type CustomerRef struct {
	id   string
	user *User
}

func CustomerReference(id string) CustomerRef {
	return CustomerRef{id: id}
}

func ExpandedCustomer(user *User) CustomerRef {
	return CustomerRef{id: user.ID, user: user}
}

func (c CustomerRef) ID() string { return c.id }

func (c CustomerRef) Customer() *User { return c.user }

func (c CustomerRef) IsExpanded() bool { return c.user != nil }

func (c CustomerRef) MarshalJSON() ([]byte, error) {
	if c.user != nil {
		return json.Marshal(c.user)
	}
	return json.Marshal(c.id)
}

func (c *CustomerRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*c = CustomerReference(id)
		return nil
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("customer reference must be an id string or a customer object: %w", err)
	}
	*c = ExpandedCustomer(&user)
	return nil
}

// BookingView is the read model handed to clients: a booking with its room
// and customer references, expanded when the caller asked for it.
type BookingView struct {
	ID        string      `json:"id"`
	Room      RoomRef     `json:"room"`
	Customer  CustomerRef `json:"customer"`
	Date      time.Time   `json:"date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
