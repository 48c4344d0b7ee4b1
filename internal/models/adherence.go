package models

import (
	"time"

	"github.com/google/uuid"
)

// AdherenceDay is a per-day adherence summary, written once when the schedule
// rolls past the day boundary. Unlike Progress it is persisted, so history
// survives schedule regeneration.
type AdherenceDay struct {
	UserID     uuid.UUID `json:"user_id"`
	Date       string    `json:"date"` // "2006-01-02"
	Taken      int       `json:"taken"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	CreatedAt  time.Time `json:"created_at"`
}
