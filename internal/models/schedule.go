package models

import (
	"time"

	"github.com/google/uuid"
)

// SkipReason explains why a dose was skipped
type SkipReason string

const (
	SkipReasonForgot        SkipReason = "forgot"
	SkipReasonSideEffects   SkipReason = "side_effects"
	SkipReasonFeelingBetter SkipReason = "feeling_better"
	SkipReasonRanOut        SkipReason = "ran_out"
	SkipReasonOther         SkipReason = "other"
)

// DoseOccurrence is one concrete (medication, time-of-day) dose instance
// scheduled for a single day. TakenAt is a display-formatted wall-clock time,
// informational only. Notified records that a reminder was already dispatched
// for this occurrence so restarts never double-fire.
type DoseOccurrence struct {
	MedicationID uuid.UUID  `json:"medication_id"`
	Time         string     `json:"time"`
	Taken        bool       `json:"taken"`
	TakenAt      *string    `json:"taken_at,omitempty"`
	Skipped      bool       `json:"skipped,omitempty"`
	SkipReason   SkipReason `json:"skip_reason,omitempty"`
	Notified     bool       `json:"notified,omitempty"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`
}

// DailySchedule is the persisted occurrence snapshot for one user and date.
// The snapshot is regenerated wholesale whenever the stored date no longer
// equals the current date or the medication registry changes.
type DailySchedule struct {
	UserID    uuid.UUID        `json:"user_id"`
	Date      string           `json:"date"` // "2006-01-02"
	Entries   []DoseOccurrence `json:"entries"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Progress is a derived adherence snapshot, never stored independently.
type Progress struct {
	Taken      int     `json:"taken"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// DateFormat is the layout used for schedule dates.
const DateFormat = "2006-01-02"

// TimeOfDayFormat is the layout used for dose times ("HH:MM").
const TimeOfDayFormat = "15:04"
