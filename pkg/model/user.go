package model

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is both a staff account and a customer; customers are users with role
// "user". The password hash never leaves the server: it is excluded from JSON
// and stripped again at the handler boundary.
type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role" validate:"required,oneof=admin user"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
