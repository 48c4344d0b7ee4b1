package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Palette is the fixed set of display colors assigned to medications.
// Colors are assigned round-robin by insertion order and reuse after the
// palette wraps is expected.
var Palette = []string{
	"#3B82F6", // blue
	"#10B981", // green
	"#8B5CF6", // purple
	"#F59E0B", // orange
	"#EC4899", // pink
	"#6366F1", // indigo
}

// PaletteColor returns the display color for the nth medication a user creates.
func PaletteColor(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// Medication represents a medication a user has defined. Times holds distinct
// "HH:MM" wall-clock values in ascending order; NormalizeTimes enforces that
// invariant at construction and update time.
type Medication struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	Times     []string  `json:"times"`
	Notes     *string   `json:"notes,omitempty"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeTimes deduplicates and sorts a list of "HH:MM" values ascending.
// Lexicographic order is chronological order because the values are zero-padded.
func NormalizeTimes(times []string) []string {
	seen := make(map[string]struct{}, len(times))
	normalized := make([]string, 0, len(times))
	for _, t := range times {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}
	sort.Strings(normalized)
	return normalized
}
