package schedule

import "github.com/medtrack/medtrack/internal/models"

// DefaultUpcomingLimit caps Upcoming results when callers pass no limit.
const DefaultUpcomingLimit = 3

// CalcProgress derives the adherence snapshot for an occurrence list.
// Percentage is the raw fraction times 100; presentation layers round for
// display. An empty schedule reports zero percent, not NaN.
func CalcProgress(entries []models.DoseOccurrence) models.Progress {
	total := len(entries)
	taken := 0
	for _, e := range entries {
		if e.Taken {
			taken++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(taken) / float64(total) * 100
	}

	return models.Progress{Taken: taken, Total: total, Percentage: percentage}
}

// Upcoming returns untaken occurrences at or after now ("HH:MM"), in
// ascending time order, truncated to limit. The comparison is a plain string
// comparison against the current time-of-day, so it deliberately does not
// wrap across midnight: late in the day the result shrinks to empty and the
// next day's regeneration repopulates it.
func Upcoming(entries []models.DoseOccurrence, now string, limit int) []models.DoseOccurrence {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	upcoming := make([]models.DoseOccurrence, 0, limit)
	for _, e := range entries {
		if e.Taken || e.Time < now {
			continue
		}
		upcoming = append(upcoming, e)
		if len(upcoming) == limit {
			break
		}
	}
	return upcoming
}
