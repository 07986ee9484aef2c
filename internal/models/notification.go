package models

import "time"

// Notification variants
const (
	NotificationDefault     = "default"
	NotificationDestructive = "destructive"
)

// Notification is a short user-facing message ("toast") produced by a session
// operation and handed to the client with the next snapshot.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotification builds a default notification stamped now
func NewNotification(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: NotificationDefault, CreatedAt: time.Now()}
}

// NewErrorNotification builds a destructive notification stamped now
func NewErrorNotification(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: NotificationDestructive, CreatedAt: time.Now()}
}
