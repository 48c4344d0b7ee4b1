package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// reminderPauseAfter is how long a user can be inactive before the scheduler
// stops scanning their schedule for due doses.
const reminderPauseAfter = 30 * 24 * time.Hour

// UserActivityRepository handles user activity database operations
type UserActivityRepository struct {
	db *DB
}

// NewUserActivityRepository creates a new user activity repository
func NewUserActivityRepository(db *DB) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

// GetByUserID retrieves user activity by user ID
func (r *UserActivityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	activity := &models.UserActivity{}

	query := `
		SELECT user_id, last_api_interaction, reminders_paused, created_at, updated_at
		FROM user_activity
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&activity.UserID,
		&activity.LastAPIInteraction,
		&activity.RemindersPaused,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get user activity: %w", err)
	}

	return activity, nil
}

// Touch updates the last API interaction timestamp and resumes reminders
// for a previously paused user.
func (r *UserActivityRepository) Touch(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO user_activity (user_id, last_api_interaction, reminders_paused, created_at, updated_at)
		VALUES ($1, $2, false, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_api_interaction = EXCLUDED.last_api_interaction,
		    reminders_paused = false,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}

	return nil
}

// PauseInactive pauses reminders for users who have not interacted with
// the API within the pause window. Returns the affected user IDs.
func (r *UserActivityRepository) PauseInactive(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		UPDATE user_activity
		SET reminders_paused = true, updated_at = $1
		WHERE reminders_paused = false AND last_api_interaction < $2
		RETURNING user_id
	`

	now := time.Now()
	rows, err := r.db.QueryContext(ctx, query, now, now.Add(-reminderPauseAfter))
	if err != nil {
		return nil, fmt.Errorf("failed to pause inactive users: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating paused users: %w", err)
	}

	return userIDs, nil
}
