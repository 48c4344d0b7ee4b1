package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// Reminder is the event emitted when a dose is due and still untaken.
type Reminder struct {
	MedicationID uuid.UUID
	Time         string
}

// SnapshotFunc provides the clock's read access to the current schedule.
type SnapshotFunc func() []models.DoseOccurrence

// Clock wakes up once per minute and emits one Reminder for every occurrence
// whose time equals the current "HH:MM" and whose dose is still untaken. The
// equality comparison makes each occurrence's firing window exactly one
// wake-up wide, so a reminder fires at most once per occurrence per day.
// Minutes missed while the clock is stopped or the process is suspended are
// dropped; there is no catch-up.
type Clock struct {
	snapshot SnapshotFunc
	interval time.Duration
	now      func() time.Time

	reminders  chan Reminder
	cancel     context.CancelFunc
	done       chan struct{}
	lastMinute string
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithInterval overrides the wake-up cadence. Cadences coarser than one
// minute will skip minutes entirely rather than fire late.
func WithInterval(d time.Duration) ClockOption {
	return func(c *Clock) { c.interval = d }
}

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) { c.now = now }
}

// NewClock creates a stopped (idle) clock reading schedules from snapshot.
func NewClock(snapshot SnapshotFunc, opts ...ClockOption) *Clock {
	c := &Clock{
		snapshot:  snapshot,
		interval:  time.Minute,
		now:       time.Now,
		reminders: make(chan Reminder, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reminders returns the channel reminder events are emitted on. The channel
// is closed when the clock stops; re-arming after Stop replaces it, so a
// caller restarting the clock must fetch the channel again after Start.
func (c *Clock) Reminders() <-chan Reminder {
	return c.reminders
}

// Start arms the clock. The first emission pass runs on the first tick, not
// immediately, matching the reference cadence. Start returns right away; the
// wake-up loop runs until Stop is called or ctx is cancelled. A stopped clock
// can be re-armed; each restart gets a fresh Reminders channel and forgets
// the minute guard, so the idle/armed cycle can repeat indefinitely.
func (c *Clock) Start(ctx context.Context) {
	if c.cancel != nil {
		return // already armed
	}
	if c.done != nil {
		// Previous run closed the reminders channel on exit.
		c.reminders = make(chan Reminder, 16)
		c.lastMinute = ""
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		defer close(c.reminders)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.emitDue(ctx)
			}
		}
	}()
}

// Stop disarms the clock and waits for the wake-up loop to exit. Reminders
// already emitted are not recalled.
func (c *Clock) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
}

// emitDue runs one wake-up pass. A second wake-up in the same minute emits
// nothing, so cadences finer than one minute never double-fire.
func (c *Clock) emitDue(ctx context.Context) {
	minute := c.now().Format(models.TimeOfDayFormat)
	if minute == c.lastMinute {
		return
	}
	c.lastMinute = minute

	for _, due := range DueAt(c.snapshot(), minute) {
		select {
		case <-ctx.Done():
			return
		case c.reminders <- Reminder{MedicationID: due.MedicationID, Time: due.Time}:
		}
	}
}

// DueAt filters an occurrence list down to the entries due exactly at minute
// ("HH:MM") that still need a reminder: untaken, unskipped, and not already
// notified. Shared by the in-process Clock and the multi-user scheduler scan.
func DueAt(entries []models.DoseOccurrence, minute string) []models.DoseOccurrence {
	var due []models.DoseOccurrence
	for _, e := range entries {
		if e.Time != minute || e.Taken || e.Skipped || e.Notified {
			continue
		}
		due = append(due, e)
	}
	return due
}
