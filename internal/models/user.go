package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the auth service. ID is the token subject.
type User struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	Name        *string          `json:"name,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
