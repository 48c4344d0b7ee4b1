package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, medication_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.UserID,
		n.MedicationID,
		n.Title,
		n.Message,
		n.Type,
		n.IsRead,
		time.Now(),
	).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByUserID retrieves notifications for a user, newest first
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, medication_id, title, message, type, is_read, created_at, read_at
		FROM notifications
		WHERE user_id = $1
	`
	args := []any{userID}

	if unreadOnly {
		query += " AND is_read = false"
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var readAt sql.NullTime

		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.MedicationID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.CreatedAt,
			&readAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{}
	var readAt sql.NullTime

	query := `
		SELECT id, user_id, medication_id, title, message, type, is_read, created_at, read_at
		FROM notifications
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.MedicationID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.IsRead,
		&n.CreatedAt,
		&readAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}

	return n, nil
}

// MarkRead marks a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}
