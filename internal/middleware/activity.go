package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/medtrack/medtrack/internal/database"
)

// ActivityTracking records the last API interaction for authenticated users.
// Touching the activity row also resumes reminders for users that were paused
// for inactivity.
func ActivityTracking(activityRepo *database.UserActivityRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r)
			if user != nil {
				if err := activityRepo.Touch(r.Context(), user.ID); err != nil {
					log.Printf("Failed to update user activity: %v", err)
					// Don't fail the request if activity tracking fails
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ActivityTracker periodically pauses reminders for users that have not
// interacted with the API for an extended period.
type ActivityTracker struct {
	activityRepo  *database.UserActivityRepository
	checkInterval time.Duration
}

// NewActivityTracker creates a new activity tracker
func NewActivityTracker(activityRepo *database.UserActivityRepository) *ActivityTracker {
	return &ActivityTracker{
		activityRepo:  activityRepo,
		checkInterval: 1 * time.Hour,
	}
}

// Start starts the background goroutine for pausing inactive users
func (at *ActivityTracker) Start(ctx context.Context) {
	ticker := time.NewTicker(at.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			paused, err := at.activityRepo.PauseInactive(ctx)
			if err != nil {
				log.Printf("Failed to pause inactive users: %v", err)
				continue
			}
			for _, userID := range paused {
				log.Printf("Paused reminders for inactive user %s", userID)
			}
		}
	}
}
