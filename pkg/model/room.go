package model

import "time"

const (
	RoomAvailable   = "available"
	RoomMaintenance = "maintenance"
)

type Room struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomNumber string    `json:"room_number" bson:"room_number" validate:"required,min=1,max=50"`
	Capacity   int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=50"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=available maintenance"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type RoomUpdate struct {
	RoomNumber string `json:"room_number,omitempty" validate:"omitempty,min=1,max=50"`
	Capacity   *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=50"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=available maintenance"`
}
