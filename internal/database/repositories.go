package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// MedicationRepositoryInterface defines the interface for medication repository operations
// This interface enables better testability by allowing mock implementations
type MedicationRepositoryInterface interface {
	Create(ctx context.Context, med *models.Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Medication, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, med *models.Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScheduleRepositoryInterface defines the interface for schedule snapshot operations
type ScheduleRepositoryInterface interface {
	Get(ctx context.Context, userID uuid.UUID, date string) (*models.DailySchedule, error)
	GetLatest(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error)
	Save(ctx context.Context, userID uuid.UUID, date string, entries []models.DoseOccurrence) error
}

// NotificationRepositoryInterface defines the interface for notification repository operations
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// AdherenceRepositoryInterface defines the interface for adherence summary operations
type AdherenceRepositoryInterface interface {
	Upsert(ctx context.Context, day *models.AdherenceDay) error
	GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]models.AdherenceDay, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Ensure concrete types implement the interfaces
var (
	_ MedicationRepositoryInterface   = (*MedicationRepository)(nil)
	_ UserRepositoryInterface         = (*UserRepository)(nil)
	_ ScheduleRepositoryInterface     = (*ScheduleRepository)(nil)
	_ NotificationRepositoryInterface = (*NotificationRepository)(nil)
	_ AdherenceRepositoryInterface    = (*AdherenceRepository)(nil)
)
