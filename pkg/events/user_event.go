package events

import "time"

// Event types published to the user lifecycle queue.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is the JSON payload put on the RabbitMQ queue after a
// successful mutation. Consumers (e.g. the email worker) key off Type.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
