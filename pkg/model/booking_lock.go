package model

import "time"

// BookingLock is an advisory lock document guarding one (room, date, start)
// slot while an admission decision is in flight. The unique _id makes the
// second concurrent insert fail with a duplicate key error, which the service
// reports as a slot conflict.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
