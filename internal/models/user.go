package models

import (
	"time"
)

// User is the read-only profile summary this subsystem consumes from the
// identity/profile service. It is denormalized onto messages and participant
// listings; nothing here ever writes back to it.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email,omitempty" db:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
