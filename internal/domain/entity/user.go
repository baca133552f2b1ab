package entity

import (
	"time"
)

// User is the persisted user record.
// Password always holds a bcrypt hash, never the plaintext.
// Active=false marks a soft-deleted user; such records stay queryable
// and still participate in username/email uniqueness.
type User struct {
	ID        int64
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
