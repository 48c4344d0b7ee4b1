package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// ScheduleRepository persists daily schedule snapshots. Each user has at most
// one snapshot per date, stored as a JSON occurrence list keyed by
// (user_id, date) — the same keyed-snapshot shape the reference clients use.
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get retrieves the schedule snapshot for a user and date. A missing row is
// not an error to callers that treat it as "no data": they get sql.ErrNoRows
// wrapped and regenerate.
func (r *ScheduleRepository) Get(ctx context.Context, userID uuid.UUID, date string) (*models.DailySchedule, error) {
	sched := &models.DailySchedule{}
	var entriesJSON []byte

	query := `
		SELECT user_id, date, entries, updated_at
		FROM daily_schedules
		WHERE user_id = $1 AND date = $2
	`

	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&sched.UserID,
		&sched.Date,
		&entriesJSON,
		&sched.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if err := json.Unmarshal(entriesJSON, &sched.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule entries: %w", err)
	}

	return sched, nil
}

// GetLatest retrieves the most recent schedule snapshot for a user,
// regardless of date. The rollover worker uses it to summarize the previous
// day after the date advances.
func (r *ScheduleRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error) {
	sched := &models.DailySchedule{}
	var entriesJSON []byte

	query := `
		SELECT user_id, date, entries, updated_at
		FROM daily_schedules
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&sched.UserID,
		&sched.Date,
		&entriesJSON,
		&sched.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest schedule: %w", err)
	}

	if err := json.Unmarshal(entriesJSON, &sched.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule entries: %w", err)
	}

	return sched, nil
}

// Save upserts the schedule snapshot for a user and date, replacing the
// stored occurrence list wholesale.
func (r *ScheduleRepository) Save(ctx context.Context, userID uuid.UUID, date string, entries []models.DoseOccurrence) error {
	if entries == nil {
		entries = []models.DoseOccurrence{}
	}
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule entries: %w", err)
	}

	query := `
		INSERT INTO daily_schedules (user_id, date, entries, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date) DO UPDATE
		SET entries = EXCLUDED.entries,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, date, entriesJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}

	return nil
}

// DeleteBefore removes snapshots older than the given date. Summarized days
// live on in adherence_days, so old snapshots are safe to prune.
func (r *ScheduleRepository) DeleteBefore(ctx context.Context, userID uuid.UUID, date string) (int64, error) {
	query := `DELETE FROM daily_schedules WHERE user_id = $1 AND date < $2`

	result, err := r.db.ExecContext(ctx, query, userID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to prune schedules: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
