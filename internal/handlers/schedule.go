package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/middleware"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/schedule"
	"github.com/medtrack/medtrack/internal/validation"
)

// ScheduleHandler handles daily schedule requests
type ScheduleHandler struct {
	medicationRepo database.MedicationRepositoryInterface
	scheduleRepo   database.ScheduleRepositoryInterface
	upcomingLimit  int
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(medicationRepo database.MedicationRepositoryInterface, scheduleRepo database.ScheduleRepositoryInterface, upcomingLimit int) *ScheduleHandler {
	if upcomingLimit <= 0 {
		upcomingLimit = schedule.DefaultUpcomingLimit
	}
	return &ScheduleHandler{
		medicationRepo: medicationRepo,
		scheduleRepo:   scheduleRepo,
		upcomingLimit:  upcomingLimit,
	}
}

// RegisterRoutes registers schedule routes on the given router
// The router should already have the /schedule prefix
func (h *ScheduleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/today", h.Today).Methods("GET")
	r.HandleFunc("/toggle", h.Toggle).Methods("POST")
	r.HandleFunc("/skip", h.Skip).Methods("POST")
	r.HandleFunc("/upcoming", h.Upcoming).Methods("GET")
}

// ToggleRequest identifies a single dose occurrence to flip
type ToggleRequest struct {
	MedicationID uuid.UUID `json:"medication_id" validate:"required"`
	Time         string    `json:"time" validate:"required,hhmm"`
}

// SkipRequest marks a dose as deliberately skipped
type SkipRequest struct {
	MedicationID uuid.UUID         `json:"medication_id" validate:"required"`
	Time         string            `json:"time" validate:"required,hhmm"`
	Reason       models.SkipReason `json:"reason" validate:"required,skip_reason"`
}

// TodayResponse is the daily schedule with its progress summary. Changed is
// set by the toggle and skip operations and reports whether the request
// actually mutated an occurrence.
type TodayResponse struct {
	Date     string                  `json:"date"`
	Entries  []models.DoseOccurrence `json:"entries"`
	Progress models.Progress         `json:"progress"`
	Changed  *bool                   `json:"changed,omitempty"`
}

// loadTracker restores the user's tracker from the latest snapshot,
// regenerating when the snapshot is stale. Returns the tracker and whether
// the snapshot changed and needs saving.
func (h *ScheduleHandler) loadTracker(r *http.Request, user *models.User) (*schedule.Tracker, bool, error) {
	ctx := r.Context()

	meds, err := h.medicationRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load medications: %w", err)
	}

	localNow := nowInUserZone(user)
	today := localNow.Format(models.DateFormat)

	tracker := schedule.NewTracker()
	tracker.SetNow(func() time.Time { return localNow })

	prev, err := h.scheduleRepo.GetLatest(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to load schedule: %w", err)
	}
	if prev != nil {
		tracker.Restore(meds, prev.Entries, prev.Date)
	} else {
		tracker.Restore(meds, nil, "")
	}

	regenerated := tracker.RegenerateIfStale(meds, today)
	return tracker, regenerated, nil
}

func (h *ScheduleHandler) saveTracker(r *http.Request, userID uuid.UUID, tracker *schedule.Tracker) error {
	return h.scheduleRepo.Save(r.Context(), userID, tracker.Date(), tracker.Snapshot())
}

// Today returns the user's schedule for the current day with progress
func (h *ScheduleHandler) Today(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	tracker, regenerated, err := h.loadTracker(r, user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load schedule")
		return
	}
	if regenerated {
		if err := h.saveTracker(r, user.ID, tracker); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save schedule")
			return
		}
	}

	entries := tracker.Snapshot()
	respondJSON(w, http.StatusOK, TodayResponse{
		Date:     tracker.Date(),
		Entries:  entries,
		Progress: schedule.CalcProgress(entries),
	})
}

// Toggle flips the taken state of one dose occurrence. Toggling an unknown
// pair is a no-op reported as changed:false, not an error.
func (h *ScheduleHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req ToggleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tracker, _, err := h.loadTracker(r, user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load schedule")
		return
	}

	changed := tracker.Toggle(req.MedicationID, req.Time)
	if changed {
		if err := h.saveTracker(r, user.ID, tracker); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save schedule")
			return
		}
	}

	entries := tracker.Snapshot()
	respondJSON(w, http.StatusOK, TodayResponse{
		Date:     tracker.Date(),
		Entries:  entries,
		Progress: schedule.CalcProgress(entries),
		Changed:  &changed,
	})
}

// Skip marks one dose occurrence as skipped with a reason
func (h *ScheduleHandler) Skip(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SkipRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tracker, _, err := h.loadTracker(r, user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load schedule")
		return
	}

	changed := tracker.Skip(req.MedicationID, req.Time, req.Reason)
	if changed {
		if err := h.saveTracker(r, user.ID, tracker); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save schedule")
			return
		}
	}

	entries := tracker.Snapshot()
	respondJSON(w, http.StatusOK, TodayResponse{
		Date:     tracker.Date(),
		Entries:  entries,
		Progress: schedule.CalcProgress(entries),
		Changed:  &changed,
	})
}

// Upcoming returns the next untaken doses at or after the current minute.
// Doses already past midnight are not wrapped into the next day.
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := h.upcomingLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	tracker, regenerated, err := h.loadTracker(r, user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load schedule")
		return
	}
	if regenerated {
		if err := h.saveTracker(r, user.ID, tracker); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save schedule")
			return
		}
	}

	minute := nowInUserZone(user).Format(models.TimeOfDayFormat)
	upcoming := schedule.Upcoming(tracker.Snapshot(), minute, limit)
	respondJSON(w, http.StatusOK, upcoming)
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	if err := validation.Validate.Struct(dst); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}
