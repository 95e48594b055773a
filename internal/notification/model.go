// File: internal/notification/model.go
package notification

import "time"

// Notification is a backend-generated message for a user: submission
// outcomes, withdrawal settlements, new work. Notifications are immutable
// and vanish once read.
type Notification struct {
	ID          string    `json:"id"`
	ToEmail     string    `json:"to_email"`
	Message     string    `json:"message"`
	ActionRoute string    `json:"action_route,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
