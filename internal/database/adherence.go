package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// AdherenceRepository stores per-day adherence summaries written at schedule
// rollover. Re-running a rollover for the same day overwrites the summary.
type AdherenceRepository struct {
	db *DB
}

// NewAdherenceRepository creates a new adherence repository
func NewAdherenceRepository(db *DB) *AdherenceRepository {
	return &AdherenceRepository{db: db}
}

// Upsert creates or replaces the summary for one user and date
func (r *AdherenceRepository) Upsert(ctx context.Context, day *models.AdherenceDay) error {
	query := `
		INSERT INTO adherence_days (user_id, date, taken, total, percentage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date) DO UPDATE
		SET taken = EXCLUDED.taken,
		    total = EXCLUDED.total,
		    percentage = EXCLUDED.percentage
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		day.UserID,
		day.Date,
		day.Taken,
		day.Total,
		day.Percentage,
		time.Now(),
	).Scan(&day.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert adherence day: %w", err)
	}

	return nil
}

// GetRange retrieves summaries for the given date range, oldest first
func (r *AdherenceRepository) GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]models.AdherenceDay, error) {
	query := `
		SELECT user_id, date, taken, total, percentage, created_at
		FROM adherence_days
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query adherence days: %w", err)
	}
	defer rows.Close()

	var days []models.AdherenceDay
	for rows.Next() {
		day := models.AdherenceDay{}
		err := rows.Scan(
			&day.UserID,
			&day.Date,
			&day.Taken,
			&day.Total,
			&day.Percentage,
			&day.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adherence day: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adherence days: %w", err)
	}

	return days, nil
}
