package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationTypeMedication NotificationType = "medication"
	NotificationTypeSystem     NotificationType = "system"
)

// Notification is a delivered reminder event. The notifier worker writes one
// row per ReminderDue event it consumes; on-screen or push delivery is the
// responsibility of external clients reading this log.
type Notification struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	MedicationID *uuid.UUID       `json:"medication_id,omitempty"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"type"`
	IsRead       bool             `json:"is_read"`
	CreatedAt    time.Time        `json:"created_at"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
}
