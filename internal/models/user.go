package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. APIToken is the opaque bearer token
// used by the thin auth layer; token issuance happens in the configure CLI.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	APIToken  string    `json:"-"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location resolves the user's IANA timezone, falling back to UTC when the
// name is empty or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UserActivity tracks when a user last interacted with the API. The scheduler
// uses it to skip reminder scans for long-inactive accounts.
type UserActivity struct {
	UserID             uuid.UUID `json:"user_id"`
	LastAPIInteraction time.Time `json:"last_api_interaction"`
	RemindersPaused    bool      `json:"reminders_paused"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
