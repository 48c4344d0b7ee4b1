package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/models"
)

type mockMedicationRepo struct {
	mu   sync.Mutex
	meds map[uuid.UUID]*models.Medication
}

func newMockMedicationRepo() *mockMedicationRepo {
	return &mockMedicationRepo{meds: make(map[uuid.UUID]*models.Medication)}
}

func (m *mockMedicationRepo) Create(ctx context.Context, med *models.Medication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *med
	m.meds[med.ID] = &stored
	return nil
}

func (m *mockMedicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	med, ok := m.meds[id]
	if !ok {
		return nil, fmt.Errorf("medication not found: %w", sql.ErrNoRows)
	}
	out := *med
	return &out, nil
}

func (m *mockMedicationRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Medication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Medication
	for _, med := range m.meds {
		if med.UserID == userID {
			out = append(out, *med)
		}
	}
	return out, nil
}

func (m *mockMedicationRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	meds, _ := m.GetByUserID(ctx, userID)
	return len(meds), nil
}

func (m *mockMedicationRepo) Update(ctx context.Context, med *models.Medication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meds[med.ID]; !ok {
		return fmt.Errorf("medication not found: %w", sql.ErrNoRows)
	}
	stored := *med
	m.meds[med.ID] = &stored
	return nil
}

func (m *mockMedicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.meds, id)
	return nil
}

var _ database.MedicationRepositoryInterface = (*mockMedicationRepo)(nil)

type mockScheduleRepo struct {
	mu        sync.Mutex
	snapshots map[string]*models.DailySchedule // key: userID+date
	latest    map[uuid.UUID]*models.DailySchedule
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{
		snapshots: make(map[string]*models.DailySchedule),
		latest:    make(map[uuid.UUID]*models.DailySchedule),
	}
}

func (m *mockScheduleRepo) Get(ctx context.Context, userID uuid.UUID, date string) (*models.DailySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[userID.String()+date]
	if !ok {
		return nil, fmt.Errorf("schedule not found: %w", sql.ErrNoRows)
	}
	out := *snap
	return &out, nil
}

func (m *mockScheduleRepo) GetLatest(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.latest[userID]
	if !ok {
		return nil, fmt.Errorf("schedule not found: %w", sql.ErrNoRows)
	}
	out := *snap
	return &out, nil
}

func (m *mockScheduleRepo) Save(ctx context.Context, userID uuid.UUID, date string, entries []models.DoseOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := &models.DailySchedule{UserID: userID, Date: date, Entries: entries}
	m.snapshots[userID.String()+date] = snap
	m.latest[userID] = snap
	return nil
}

var _ database.ScheduleRepositoryInterface = (*mockScheduleRepo)(nil)

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*models.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[uuid.UUID]*models.Notification)}
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *n
	m.notifications[n.ID] = &stored
	return nil
}

func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		copied := *n
		out = append(out, &copied)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}
	out := *n
	return &out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}
	n.IsRead = true
	return nil
}

var _ database.NotificationRepositoryInterface = (*mockNotificationRepo)(nil)

type mockAdherenceRepo struct {
	mu   sync.Mutex
	days []models.AdherenceDay
}

func (m *mockAdherenceRepo) Upsert(ctx context.Context, day *models.AdherenceDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = append(m.days, *day)
	return nil
}

func (m *mockAdherenceRepo) GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]models.AdherenceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AdherenceDay
	for _, d := range m.days {
		if d.UserID == userID && d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	return out, nil
}

var _ database.AdherenceRepositoryInterface = (*mockAdherenceRepo)(nil)
