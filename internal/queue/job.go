package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminderDue is a job fired when a dose reaches its scheduled time
	JobTypeReminderDue JobType = "reminder_due"
	// JobTypeAdherenceRollover is a job for summarizing a user's finished day
	JobTypeAdherenceRollover JobType = "adherence_rollover"
)

// Job represents a job in the queue
type Job struct {
	ID           uuid.UUID      `json:"id"`
	Type         JobType        `json:"type"`
	UserID       uuid.UUID      `json:"user_id"`
	MedicationID *uuid.UUID     `json:"medication_id,omitempty"` // Optional, for reminder jobs
	Time         string         `json:"time,omitempty"`          // Scheduled dose time ("HH:MM"), for reminder jobs
	Date         string         `json:"date,omitempty"`          // Schedule date ("YYYY-MM-DD")
	NotBefore    *time.Time     `json:"not_before,omitempty"`    // Earliest time to process job (nil = immediate)
	NotAfter     *time.Time     `json:"not_after,omitempty"`     // Latest time to process job (nil = no expiration)
	Metadata     map[string]any `json:"metadata,omitempty"`      // Job-specific data
	CreatedAt    time.Time      `json:"created_at"`
	RetryCount   int            `json:"retry_count"`
	MaxRetries   int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID uuid.UUID, medicationID *uuid.UUID) *Job {
	return &Job{
		ID:           uuid.New(),
		Type:         jobType,
		UserID:       userID,
		MedicationID: medicationID,
		Metadata:     make(map[string]any),
		CreatedAt:    time.Now(),
		RetryCount:   0,
		MaxRetries:   3,
	}
}

// NewReminderJob creates a reminder_due job for a single dose occurrence.
func NewReminderJob(userID, medicationID uuid.UUID, date, timeOfDay string) *Job {
	job := NewJob(JobTypeReminderDue, userID, &medicationID)
	job.Date = date
	job.Time = timeOfDay
	return job
}

// NewRolloverJob creates an adherence_rollover job for a finished day.
func NewRolloverJob(userID uuid.UUID, date string) *Job {
	job := NewJob(JobTypeAdherenceRollover, userID, nil)
	job.Date = date
	return job
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
