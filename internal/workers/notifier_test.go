package workers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/queue"
	"go.uber.org/zap"
)

func TestNotifier_ProcessReminderDueJob_CreatesNotification(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	medID := uuid.New()

	medRepo := &mockMedicationRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
			return &models.Medication{ID: medID, UserID: userID, Name: "Paracetamol", Dosage: "500mg"}, nil
		},
	}
	notifRepo := &mockNotificationRepo{}
	n := NewNotifier(medRepo, &mockScheduleRepo{}, notifRepo, &mockAdherenceRepo{}, nil, zap.NewNop())

	job := queue.NewReminderJob(userID, medID, "2026-08-29", "08:00")
	if err := n.ProcessReminderDueJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessReminderDueJob: %v", err)
	}

	if len(notifRepo.created) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifRepo.created))
	}
	got := notifRepo.created[0]
	if got.UserID != userID {
		t.Errorf("Expected user %s, got %s", userID, got.UserID)
	}
	if got.MedicationID == nil || *got.MedicationID != medID {
		t.Errorf("Expected medication %s, got %v", medID, got.MedicationID)
	}
	if got.Type != models.NotificationTypeMedication {
		t.Errorf("Expected type %s, got %s", models.NotificationTypeMedication, got.Type)
	}
	if !strings.Contains(got.Message, "Paracetamol") || !strings.Contains(got.Message, "08:00") {
		t.Errorf("Unexpected message: %q", got.Message)
	}
}

func TestNotifier_ProcessReminderDueJob_MissingFields(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	medID := uuid.New()
	n := NewNotifier(&mockMedicationRepo{}, &mockScheduleRepo{}, &mockNotificationRepo{}, &mockAdherenceRepo{}, nil, zap.NewNop())

	noMed := queue.NewJob(queue.JobTypeReminderDue, userID, nil)
	noMed.Time = "08:00"
	if err := n.ProcessReminderDueJob(context.Background(), noMed); err == nil {
		t.Error("Expected error for missing medication_id")
	}

	noTime := queue.NewJob(queue.JobTypeReminderDue, userID, &medID)
	if err := n.ProcessReminderDueJob(context.Background(), noTime); err == nil {
		t.Error("Expected error for missing time")
	}
}

func TestNotifier_ProcessReminderDueJob_WrongOwner(t *testing.T) {
	t.Parallel()

	medID := uuid.New()
	medRepo := &mockMedicationRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
			return &models.Medication{ID: medID, UserID: uuid.New(), Name: "Ibuprofen", Dosage: "200mg"}, nil
		},
	}
	notifRepo := &mockNotificationRepo{}
	n := NewNotifier(medRepo, &mockScheduleRepo{}, notifRepo, &mockAdherenceRepo{}, nil, zap.NewNop())

	job := queue.NewReminderJob(uuid.New(), medID, "2026-08-29", "08:00")
	if err := n.ProcessReminderDueJob(context.Background(), job); err == nil {
		t.Error("Expected error for medication owned by another user")
	}
	if len(notifRepo.created) != 0 {
		t.Errorf("Expected no notifications, got %d", len(notifRepo.created))
	}
}

func TestNotifier_ProcessAdherenceRolloverJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	medID := uuid.New()
	schedRepo := &mockScheduleRepo{
		getFunc: func(ctx context.Context, uid uuid.UUID, date string) (*models.DailySchedule, error) {
			return &models.DailySchedule{
				UserID: uid,
				Date:   date,
				Entries: []models.DoseOccurrence{
					{MedicationID: medID, Time: "08:00", Taken: true},
					{MedicationID: medID, Time: "20:00", Taken: false},
				},
			}, nil
		},
	}
	adherenceRepo := &mockAdherenceRepo{}
	n := NewNotifier(&mockMedicationRepo{}, schedRepo, &mockNotificationRepo{}, adherenceRepo, nil, zap.NewNop())

	job := queue.NewRolloverJob(userID, "2026-08-28")
	if err := n.ProcessAdherenceRolloverJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessAdherenceRolloverJob: %v", err)
	}

	if len(adherenceRepo.upserted) != 1 {
		t.Fatalf("Expected 1 adherence row, got %d", len(adherenceRepo.upserted))
	}
	day := adherenceRepo.upserted[0]
	if day.Date != "2026-08-28" {
		t.Errorf("Expected date 2026-08-28, got %s", day.Date)
	}
	if day.Taken != 1 || day.Total != 2 {
		t.Errorf("Expected 1/2 taken, got %d/%d", day.Taken, day.Total)
	}
	if day.Percentage != 50 {
		t.Errorf("Expected 50%%, got %v", day.Percentage)
	}
}

func TestNotifier_ProcessAdherenceRolloverJob_NoSchedule(t *testing.T) {
	t.Parallel()

	schedRepo := &mockScheduleRepo{
		getFunc: func(ctx context.Context, uid uuid.UUID, date string) (*models.DailySchedule, error) {
			return nil, fmt.Errorf("schedule not found: %w", sql.ErrNoRows)
		},
	}
	adherenceRepo := &mockAdherenceRepo{}
	n := NewNotifier(&mockMedicationRepo{}, schedRepo, &mockNotificationRepo{}, adherenceRepo, nil, zap.NewNop())

	job := queue.NewRolloverJob(uuid.New(), "2026-08-28")
	if err := n.ProcessAdherenceRolloverJob(context.Background(), job); err != nil {
		t.Fatalf("Expected nil error for missing schedule, got %v", err)
	}
	if len(adherenceRepo.upserted) != 0 {
		t.Errorf("Expected no adherence rows, got %d", len(adherenceRepo.upserted))
	}
}

func TestNotifier_ProcessJob_UnknownType(t *testing.T) {
	t.Parallel()

	n := NewNotifier(&mockMedicationRepo{}, &mockScheduleRepo{}, &mockNotificationRepo{}, &mockAdherenceRepo{}, nil, zap.NewNop())
	msg := &mockMessage{job: queue.NewJob(queue.JobType("bogus"), uuid.New(), nil)}

	if err := n.ProcessJob(context.Background(), msg); err == nil {
		t.Error("Expected error for unknown job type")
	}
	if !msg.nacked {
		t.Error("Expected message to be nacked")
	}
}

func TestNotifier_ProcessJob_AcksOnSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	medID := uuid.New()
	medRepo := &mockMedicationRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
			return &models.Medication{ID: medID, UserID: userID, Name: "Omeprazol", Dosage: "20mg"}, nil
		},
	}
	n := NewNotifier(medRepo, &mockScheduleRepo{}, &mockNotificationRepo{}, &mockAdherenceRepo{}, nil, zap.NewNop())

	msg := &mockMessage{job: queue.NewReminderJob(userID, medID, "2026-08-29", "12:00")}
	if err := n.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if !msg.acked {
		t.Error("Expected message to be acked")
	}
}
