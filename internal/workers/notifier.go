package workers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/database"
	logpkg "github.com/medtrack/medtrack/internal/logger"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/queue"
	"github.com/medtrack/medtrack/internal/schedule"
	"go.uber.org/zap"
)

// Notifier consumes reminder jobs and turns them into notification records
// and adherence summaries.
type Notifier struct {
	medicationRepo   database.MedicationRepositoryInterface
	scheduleRepo     database.ScheduleRepositoryInterface
	notificationRepo database.NotificationRepositoryInterface
	adherenceRepo    database.AdherenceRepositoryInterface
	activityRepo     *database.UserActivityRepository
	logger           *zap.Logger
	registry         map[queue.JobType]processorEntry
}

// NewNotifier creates a notifier and registers its job processors.
func NewNotifier(
	medicationRepo database.MedicationRepositoryInterface,
	scheduleRepo database.ScheduleRepositoryInterface,
	notificationRepo database.NotificationRepositoryInterface,
	adherenceRepo database.AdherenceRepositoryInterface,
	activityRepo *database.UserActivityRepository,
	logger *zap.Logger,
) *Notifier {
	n := &Notifier{
		medicationRepo:   medicationRepo,
		scheduleRepo:     scheduleRepo,
		notificationRepo: notificationRepo,
		adherenceRepo:    adherenceRepo,
		activityRepo:     activityRepo,
		logger:           logger,
		registry:         make(map[queue.JobType]processorEntry),
	}
	n.RegisterProcessor(queue.JobTypeReminderDue, n.ProcessReminderDueJob)
	n.RegisterProcessor(queue.JobTypeAdherenceRollover, n.ProcessAdherenceRolloverJob)
	return n
}

// RegisterProcessor registers a processor for a job type.
func (n *Notifier) RegisterProcessor(typ queue.JobType, proc JobProcessor) {
	n.registry[typ] = processorEntry{proc: proc}
}

// ProcessReminderDueJob writes a notification record for a due dose.
func (n *Notifier) ProcessReminderDueJob(ctx context.Context, job *queue.Job) error {
	if job.MedicationID == nil {
		return fmt.Errorf("medication_id is required for reminder job")
	}
	if job.Time == "" {
		return fmt.Errorf("time is required for reminder job")
	}

	// Reminders for paused users are dropped, not retried
	if n.activityRepo != nil {
		activity, err := n.activityRepo.GetByUserID(ctx, job.UserID)
		if err == nil && activity != nil && activity.RemindersPaused {
			n.logger.Info("reminder_dropped_user_paused",
				zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
			)
			return nil
		}
	}

	med, err := n.medicationRepo.GetByID(ctx, *job.MedicationID)
	if err != nil {
		return fmt.Errorf("failed to get medication: %w", err)
	}
	if med.UserID != job.UserID {
		return fmt.Errorf("medication does not belong to user")
	}

	notification := &models.Notification{
		ID:           uuid.New(),
		UserID:       job.UserID,
		MedicationID: job.MedicationID,
		Title:        "Medication reminder",
		Message:      fmt.Sprintf("Time to take %s (%s) at %s", med.Name, med.Dosage, job.Time),
		Type:         models.NotificationTypeMedication,
	}
	if err := n.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	n.logger.Info("reminder_notification_created",
		zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
		zap.String("medication_id", logpkg.SanitizeUserID(job.MedicationID.String())),
		zap.String("time", job.Time),
	)
	return nil
}

// ProcessAdherenceRolloverJob summarizes a finished day into an adherence row.
func (n *Notifier) ProcessAdherenceRolloverJob(ctx context.Context, job *queue.Job) error {
	if job.Date == "" {
		return fmt.Errorf("date is required for adherence rollover job")
	}

	snap, err := n.scheduleRepo.Get(ctx, job.UserID, job.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Nothing scheduled that day, nothing to summarize
			n.logger.Debug("adherence_rollover_no_schedule",
				zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
				zap.String("date", job.Date),
			)
			return nil
		}
		return fmt.Errorf("failed to get schedule for %s: %w", job.Date, err)
	}

	progress := schedule.CalcProgress(snap.Entries)
	day := &models.AdherenceDay{
		UserID:     job.UserID,
		Date:       job.Date,
		Taken:      progress.Taken,
		Total:      progress.Total,
		Percentage: progress.Percentage,
		CreatedAt:  time.Now(),
	}
	if err := n.adherenceRepo.Upsert(ctx, day); err != nil {
		return fmt.Errorf("failed to upsert adherence summary: %w", err)
	}

	n.logger.Info("adherence_day_recorded",
		zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
		zap.String("date", job.Date),
		zap.Int("taken", day.Taken),
		zap.Int("total", day.Total),
	)
	return nil
}

// ProcessJob processes a job based on its type using the processor registry.
func (n *Notifier) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if !job.ShouldProcess() {
		fields := []zap.Field{zap.String("job_id", logpkg.SanitizeUserID(job.ID.String()))}
		if job.NotBefore != nil {
			fields = append(fields, zap.Time("not_before", *job.NotBefore))
		}
		n.logger.Debug("reminder_job_not_ready", fields...)
		if ackErr := msg.Ack(); ackErr != nil {
			n.logger.Warn("failed_to_ack_job_for_later_processing",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(ackErr)),
			)
		}
		return nil
	}
	ent, ok := n.registry[job.Type]
	if !ok {
		if nackErr := msg.Nack(false); nackErr != nil {
			n.logger.Error("failed_to_nack_unknown_job_type",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("job_type", string(job.Type)),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	if err := ent.proc(ctx, job); err != nil {
		n.logger.Error("reminder_job_failed",
			zap.String("operation", "process_job"),
			zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
			zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			n.logger.Warn("failed_to_nack_reminder_job",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("reminder job failed: %w", err)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack reminder job: %w", ackErr)
	}
	return nil
}
