package workers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/database"
	logpkg "github.com/medtrack/medtrack/internal/logger"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/queue"
	"github.com/medtrack/medtrack/internal/schedule"
	"go.uber.org/zap"
)

// ReminderDispatcher scans every user's schedule once per minute and enqueues
// a reminder job for each dose whose scheduled time matches the current
// minute in the user's timezone. A dose fires at most once: dispatched
// occurrences are persisted with the notified flag set, so restarts do not
// re-fire, and minutes missed while the process was down are not caught up.
type ReminderDispatcher struct {
	userRepo       database.UserRepositoryInterface
	medicationRepo database.MedicationRepositoryInterface
	scheduleRepo   database.ScheduleRepositoryInterface
	activityRepo   *database.UserActivityRepository
	jobQueue       queue.JobQueue
	logger         *zap.Logger
	interval       time.Duration
	now            func() time.Time
	lastMinute     map[uuid.UUID]string
}

// DispatcherOption configures a ReminderDispatcher.
type DispatcherOption func(*ReminderDispatcher)

// WithDispatchInterval overrides the scan interval (default one minute).
func WithDispatchInterval(d time.Duration) DispatcherOption {
	return func(rd *ReminderDispatcher) { rd.interval = d }
}

// WithDispatchNow overrides the time source, for tests.
func WithDispatchNow(now func() time.Time) DispatcherOption {
	return func(rd *ReminderDispatcher) { rd.now = now }
}

// NewReminderDispatcher creates a reminder dispatcher.
func NewReminderDispatcher(
	userRepo database.UserRepositoryInterface,
	medicationRepo database.MedicationRepositoryInterface,
	scheduleRepo database.ScheduleRepositoryInterface,
	activityRepo *database.UserActivityRepository,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
	opts ...DispatcherOption,
) *ReminderDispatcher {
	rd := &ReminderDispatcher{
		userRepo:       userRepo,
		medicationRepo: medicationRepo,
		scheduleRepo:   scheduleRepo,
		activityRepo:   activityRepo,
		jobQueue:       jobQueue,
		logger:         logger,
		interval:       time.Minute,
		now:            time.Now,
		lastMinute:     make(map[uuid.UUID]string),
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Run scans on a ticker until ctx is cancelled. Ticks that arrive late
// collapse into the current minute; earlier minutes are skipped silently.
func (rd *ReminderDispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(rd.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rd.Sweep(ctx)
		}
	}
}

// Sweep runs one dispatch pass over all users.
func (rd *ReminderDispatcher) Sweep(ctx context.Context) {
	users, err := rd.userRepo.List(ctx)
	if err != nil {
		rd.logger.Error("dispatch_sweep_failed",
			zap.String("operation", "list_users"),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return
	}

	for i := range users {
		if ctx.Err() != nil {
			return
		}
		if err := rd.dispatchUser(ctx, &users[i]); err != nil {
			rd.logger.Error("dispatch_user_failed",
				zap.String("user_id", logpkg.SanitizeUserID(users[i].ID.String())),
				zap.String("error", logpkg.SanitizeError(err)),
			)
		}
	}
}

func (rd *ReminderDispatcher) dispatchUser(ctx context.Context, user *models.User) error {
	if rd.activityRepo != nil {
		activity, err := rd.activityRepo.GetByUserID(ctx, user.ID)
		if err == nil && activity != nil && activity.RemindersPaused {
			return nil
		}
	}

	localNow := rd.now().In(user.Location())
	today := localNow.Format(models.DateFormat)
	minute := localNow.Format(models.TimeOfDayFormat)

	// Already dispatched this minute for this user
	if rd.lastMinute[user.ID] == minute {
		return nil
	}
	rd.lastMinute[user.ID] = minute

	// An empty registry still goes through regeneration so a user who removed
	// their last medication gets the previous day's rollover enqueued.
	meds, err := rd.medicationRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	tracker := schedule.NewTracker()
	tracker.SetNow(func() time.Time { return localNow })

	prev, err := rd.scheduleRepo.GetLatest(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	prevDate := ""
	if prev != nil {
		prevDate = prev.Date
		tracker.Restore(meds, prev.Entries, prev.Date)
	} else {
		// No snapshot yet; the empty date forces a fresh expansion below
		tracker.Restore(meds, nil, "")
	}

	regenerated := tracker.RegenerateIfStale(meds, today)
	if regenerated && prevDate != "" && prevDate != today {
		rollover := queue.NewRolloverJob(user.ID, prevDate)
		if err := rd.jobQueue.Enqueue(ctx, rollover); err != nil {
			rd.logger.Warn("failed_to_enqueue_rollover_job",
				zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
				zap.String("date", prevDate),
				zap.String("error", logpkg.SanitizeError(err)),
			)
		}
	}

	due := schedule.DueAt(tracker.Snapshot(), minute)
	for _, entry := range due {
		if !tracker.MarkNotified(entry.MedicationID, entry.Time) {
			continue
		}
		job := queue.NewReminderJob(user.ID, entry.MedicationID, today, entry.Time)
		if err := rd.jobQueue.Enqueue(ctx, job); err != nil {
			rd.logger.Error("failed_to_enqueue_reminder_job",
				zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
				zap.String("medication_id", logpkg.SanitizeUserID(entry.MedicationID.String())),
				zap.String("time", entry.Time),
				zap.String("error", logpkg.SanitizeError(err)),
			)
			continue
		}
	}

	if regenerated || len(due) > 0 {
		if err := rd.scheduleRepo.Save(ctx, user.ID, today, tracker.Snapshot()); err != nil {
			return err
		}
	}

	if len(due) > 0 {
		rd.logger.Info("reminders_dispatched",
			zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
			zap.String("minute", minute),
			zap.Int("count", len(due)),
		)
	}
	return nil
}
