package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/middleware"
	"github.com/medtrack/medtrack/internal/models"
)

// AdherenceHandler serves historical adherence summaries
type AdherenceHandler struct {
	adherenceRepo database.AdherenceRepositoryInterface
}

// NewAdherenceHandler creates a new adherence handler
func NewAdherenceHandler(adherenceRepo database.AdherenceRepositoryInterface) *AdherenceHandler {
	return &AdherenceHandler{adherenceRepo: adherenceRepo}
}

// RegisterRoutes registers adherence routes on the given router
// The router should already have the /adherence prefix
func (h *AdherenceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetRange).Methods("GET")
}

const (
	// DefaultAdherenceWindowDays is the range returned when from/days are omitted
	DefaultAdherenceWindowDays = 30
	// MaxAdherenceWindowDays caps the days query parameter
	MaxAdherenceWindowDays = 366
)

// GetRange returns per-day adherence summaries between from and to
// (inclusive, "YYYY-MM-DD"). Accepts either an explicit from/to pair or a
// days window. Defaults to the last 30 days.
func (h *AdherenceHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	localNow := nowInUserZone(user)
	to := r.URL.Query().Get("to")
	if to == "" {
		to = localNow.Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, to); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid to date, expected YYYY-MM-DD")
		return
	}

	from := r.URL.Query().Get("from")
	if from == "" {
		window := DefaultAdherenceWindowDays
		if daysParam := r.URL.Query().Get("days"); daysParam != "" {
			n, err := strconv.Atoi(daysParam)
			if err != nil || n < 1 || n > MaxAdherenceWindowDays {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid days parameter")
				return
			}
			window = n
		}
		from = localNow.AddDate(0, 0, -window).Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, from); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid from date, expected YYYY-MM-DD")
		return
	}

	if from > to {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "from must not be after to")
		return
	}

	days, err := h.adherenceRepo.GetRange(r.Context(), user.ID, from, to)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve adherence history")
		return
	}

	respondJSON(w, http.StatusOK, days)
}
