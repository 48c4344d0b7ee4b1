package workers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/queue"
)

type mockMedicationRepo struct {
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Medication, error)
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID) ([]models.Medication, error)
}

func (m *mockMedicationRepo) Create(ctx context.Context, med *models.Medication) error { return nil }
func (m *mockMedicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
	return m.getByIDFunc(ctx, id)
}
func (m *mockMedicationRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Medication, error) {
	return m.getByUserIDFunc(ctx, userID)
}
func (m *mockMedicationRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}
func (m *mockMedicationRepo) Update(ctx context.Context, med *models.Medication) error { return nil }
func (m *mockMedicationRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }

var _ database.MedicationRepositoryInterface = (*mockMedicationRepo)(nil)

type mockScheduleRepo struct {
	getFunc       func(ctx context.Context, userID uuid.UUID, date string) (*models.DailySchedule, error)
	getLatestFunc func(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error)

	mu    sync.Mutex
	saved []models.DailySchedule
}

func (m *mockScheduleRepo) Get(ctx context.Context, userID uuid.UUID, date string) (*models.DailySchedule, error) {
	return m.getFunc(ctx, userID, date)
}
func (m *mockScheduleRepo) GetLatest(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error) {
	return m.getLatestFunc(ctx, userID)
}
func (m *mockScheduleRepo) Save(ctx context.Context, userID uuid.UUID, date string, entries []models.DoseOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, models.DailySchedule{UserID: userID, Date: date, Entries: entries})
	return nil
}

func (m *mockScheduleRepo) savedSnapshots() []models.DailySchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DailySchedule, len(m.saved))
	copy(out, m.saved)
	return out
}

var _ database.ScheduleRepositoryInterface = (*mockScheduleRepo)(nil)

type mockNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
	err     error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, n)
	return nil
}
func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	return nil, nil
}
func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return nil, nil
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }

var _ database.NotificationRepositoryInterface = (*mockNotificationRepo)(nil)

type mockAdherenceRepo struct {
	mu       sync.Mutex
	upserted []*models.AdherenceDay
}

func (m *mockAdherenceRepo) Upsert(ctx context.Context, day *models.AdherenceDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, day)
	return nil
}
func (m *mockAdherenceRepo) GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]models.AdherenceDay, error) {
	return nil, nil
}

var _ database.AdherenceRepositoryInterface = (*mockAdherenceRepo)(nil)

type mockUserRepo struct {
	users []models.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, nil
}
func (m *mockUserRepo) GetByToken(ctx context.Context, token string) (*models.User, error) {
	return nil, nil
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]models.User, error) { return m.users, nil }
func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	return nil
}

var _ database.UserRepositoryInterface = (*mockUserRepo)(nil)

type mockJobQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Job
	err      error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}
func (m *mockJobQueue) Dequeue(ctx context.Context) (*queue.Message, error) { return nil, nil }
func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}
func (m *mockJobQueue) Close() error                        { return nil }
func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

func (m *mockJobQueue) jobs() []*queue.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*queue.Job, len(m.enqueued))
	copy(out, m.enqueued)
	return out
}

var _ queue.JobQueue = (*mockJobQueue)(nil)

type mockMessage struct {
	job    *queue.Job
	acked  bool
	nacked bool
}

func (m *mockMessage) Ack() error              { m.acked = true; return nil }
func (m *mockMessage) Nack(requeue bool) error { m.nacked = true; return nil }
func (m *mockMessage) GetJob() *queue.Job      { return m.job }

var _ queue.MessageInterface = (*mockMessage)(nil)
