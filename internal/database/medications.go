package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/medtrack/medtrack/internal/models"
)

// MedicationRepository handles medication database operations
type MedicationRepository struct {
	db *DB
}

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

// Create creates a new medication
func (r *MedicationRepository) Create(ctx context.Context, med *models.Medication) error {
	query := `
		INSERT INTO medications (id, user_id, name, dosage, frequency, times, notes, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		med.ID,
		med.UserID,
		med.Name,
		med.Dosage,
		med.Frequency,
		pq.Array(med.Times),
		med.Notes,
		med.Color,
		now,
		now,
	).Scan(&med.CreatedAt, &med.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}

	return nil
}

// GetByID retrieves a medication by ID
func (r *MedicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
	med := &models.Medication{}

	query := `
		SELECT id, user_id, name, dosage, frequency, times, notes, color, created_at, updated_at
		FROM medications
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&med.ID,
		&med.UserID,
		&med.Name,
		&med.Dosage,
		&med.Frequency,
		pq.Array(&med.Times),
		&med.Notes,
		&med.Color,
		&med.CreatedAt,
		&med.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("medication not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}

	return med, nil
}

// GetByUserID retrieves all medications for a user in creation order. The
// stable creation ordering is what keeps palette colors and tie-breaking in
// schedule expansion deterministic.
func (r *MedicationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency, times, notes, color, created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	var medications []models.Medication
	for rows.Next() {
		med := models.Medication{}
		err := rows.Scan(
			&med.ID,
			&med.UserID,
			&med.Name,
			&med.Dosage,
			&med.Frequency,
			pq.Array(&med.Times),
			&med.Notes,
			&med.Color,
			&med.CreatedAt,
			&med.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		medications = append(medications, med)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return medications, nil
}

// CountByUserID returns the number of medications a user has defined. Used
// for palette color assignment at insertion time.
func (r *MedicationRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM medications WHERE user_id = $1`

	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count medications: %w", err)
	}

	return count, nil
}

// Update updates an existing medication
func (r *MedicationRepository) Update(ctx context.Context, med *models.Medication) error {
	query := `
		UPDATE medications
		SET name = $2, dosage = $3, frequency = $4, times = $5, notes = $6, color = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		med.ID,
		med.Name,
		med.Dosage,
		med.Frequency,
		pq.Array(med.Times),
		med.Notes,
		med.Color,
		time.Now(),
	).Scan(&med.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("medication not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}

	return nil
}

// Delete deletes a medication by ID
func (r *MedicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM medications WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("medication not found")
	}

	return nil
}
