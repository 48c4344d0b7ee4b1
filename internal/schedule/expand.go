// Package schedule implements the daily schedule generator and
// adherence/reminder engine: expanding medications into per-day dose
// occurrences, tracking taken state, deriving progress, and firing reminders.
package schedule

import (
	"sort"

	"github.com/medtrack/medtrack/internal/models"
)

// Expand produces the full occurrence list for one day: one entry per
// (medication, time) pair, all starting untaken. The result is sorted
// ascending by time-of-day; entries with equal times keep the relative order
// of their medications in the input (stable sort). Pure function.
func Expand(medications []models.Medication) []models.DoseOccurrence {
	var entries []models.DoseOccurrence
	for _, med := range medications {
		for _, t := range med.Times {
			entries = append(entries, models.DoseOccurrence{
				MedicationID: med.ID,
				Time:         t,
				Taken:        false,
			})
		}
	}

	// Lexicographic order is chronological order for zero-padded "HH:MM".
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})

	return entries
}
