package schedule

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/models"
)

// TakenAtFormat is the display format recorded when a dose is marked taken.
const TakenAtFormat = "15:04:05"

// Tracker owns the current date's occurrence list for one user. All methods
// are safe for concurrent use: the HTTP layer toggles doses while the
// reminder clock reads the same schedule from another goroutine.
type Tracker struct {
	mu          sync.Mutex
	medications []models.Medication
	entries     []models.DoseOccurrence
	date        string
	now         func() time.Time
}

// NewTracker creates an empty tracker. Use Restore to seed it from a
// persisted snapshot.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// SetNow overrides the wall clock, for tests.
func (t *Tracker) SetNow(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Restore seeds the tracker from a persisted snapshot without regenerating.
func (t *Tracker) Restore(medications []models.Medication, entries []models.DoseOccurrence, date string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.medications = medications
	t.entries = entries
	t.date = date
}

// RegenerateIfStale replaces the stored schedule with a fresh expansion when
// the stored date does not equal today. Calling it again on the same day with
// an unchanged registry is a no-op, so taken state survives repeated calls.
// Returns true when the schedule was regenerated.
func (t *Tracker) RegenerateIfStale(medications []models.Medication, today string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.date == today {
		t.medications = medications
		return false
	}

	t.medications = medications
	t.entries = Expand(medications)
	t.date = today
	return true
}

// AddMedication appends a medication to the registry, assigns the next
// palette color by current registry length, and regenerates today's schedule
// in place so the new occurrences appear immediately. Taken state of the day
// in progress is reset, matching wholesale regeneration semantics.
func (t *Tracker) AddMedication(med models.Medication) models.Medication {
	t.mu.Lock()
	defer t.mu.Unlock()

	med.Color = models.PaletteColor(len(t.medications))
	med.Times = models.NormalizeTimes(med.Times)
	t.medications = append(t.medications, med)
	t.entries = Expand(t.medications)
	return med
}

// Toggle flips the taken flag of the unique occurrence matching
// (medicationID, time). Toggling to taken records the current wall-clock time
// for display; toggling back clears it. Returns false without changing
// anything when no occurrence matches.
func (t *Tracker) Toggle(medicationID uuid.UUID, timeOfDay string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		e := &t.entries[i]
		if e.MedicationID != medicationID || e.Time != timeOfDay {
			continue
		}
		e.Taken = !e.Taken
		if e.Taken {
			takenAt := t.now().Format(TakenAtFormat)
			e.TakenAt = &takenAt
		} else {
			e.TakenAt = nil
		}
		return true
	}
	return false
}

// Skip marks an occurrence as skipped with a reason. A skipped dose still
// counts against progress but no reminder fires for it. Returns false when no
// occurrence matches.
func (t *Tracker) Skip(medicationID uuid.UUID, timeOfDay string, reason models.SkipReason) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		e := &t.entries[i]
		if e.MedicationID != medicationID || e.Time != timeOfDay {
			continue
		}
		e.Skipped = true
		e.SkipReason = reason
		return true
	}
	return false
}

// MarkNotified records that a reminder was dispatched for the occurrence, so
// it is never dispatched twice even across process restarts.
func (t *Tracker) MarkNotified(medicationID uuid.UUID, timeOfDay string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		e := &t.entries[i]
		if e.MedicationID != medicationID || e.Time != timeOfDay {
			continue
		}
		now := t.now()
		e.Notified = true
		e.NotifiedAt = &now
		return true
	}
	return false
}

// Date returns the date the current schedule belongs to.
func (t *Tracker) Date() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.date
}

// Snapshot returns a copy of the current occurrence list.
func (t *Tracker) Snapshot() []models.DoseOccurrence {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]models.DoseOccurrence, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// Medications returns a copy of the tracked registry.
func (t *Tracker) Medications() []models.Medication {
	t.mu.Lock()
	defer t.mu.Unlock()
	meds := make([]models.Medication, len(t.medications))
	copy(meds, t.medications)
	return meds
}
