package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/middleware"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/validation"
)

// MedicationHandler handles medication-related requests
type MedicationHandler struct {
	medicationRepo database.MedicationRepositoryInterface
	scheduleRepo   database.ScheduleRepositoryInterface
}

// NewMedicationHandler creates a new medication handler
func NewMedicationHandler(medicationRepo database.MedicationRepositoryInterface, scheduleRepo database.ScheduleRepositoryInterface) *MedicationHandler {
	return &MedicationHandler{medicationRepo: medicationRepo, scheduleRepo: scheduleRepo}
}

// RegisterRoutes registers medication routes on the given router
// The router should already have the /medications prefix (e.g., from apiRouter.PathPrefix("/medications"))
func (h *MedicationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListMedications).Methods("GET")
	r.HandleFunc("", h.CreateMedication).Methods("POST")
	r.HandleFunc("/{id}", h.GetMedication).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateMedication).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteMedication).Methods("DELETE")
}

const (
	// MaxMedicationNameLength is the maximum length for a medication name
	MaxMedicationNameLength = 200
	// MaxDosageLength is the maximum length for a dosage string
	MaxDosageLength = 100
	// MaxNotesLength is the maximum length for medication notes
	MaxNotesLength = 2000
	// MaxTimesPerDay is the maximum number of dose times per medication
	MaxTimesPerDay = 24
)

// CreateMedicationRequest represents a create medication request
type CreateMedicationRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=200"`
	Dosage    string   `json:"dosage" validate:"required,min=1,max=100"`
	Frequency string   `json:"frequency" validate:"max=100"`
	Times     []string `json:"times" validate:"required,min=1,max=24,dive,hhmm"`
	Notes     *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateMedicationRequest represents an update medication request
type UpdateMedicationRequest struct {
	Name      *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Dosage    *string   `json:"dosage,omitempty" validate:"omitempty,min=1,max=100"`
	Frequency *string   `json:"frequency,omitempty" validate:"omitempty,max=100"`
	Times     *[]string `json:"times,omitempty" validate:"omitempty,min=1,max=24,dive,hhmm"`
	Notes     *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListMedications lists medications for the authenticated user
func (h *MedicationHandler) ListMedications(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	meds, err := h.medicationRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve medications")
		return
	}

	respondJSON(w, http.StatusOK, meds)
}

// CreateMedication creates a new medication. The display color is assigned
// from the palette by the user's current medication count, and today's
// schedule is regenerated so the new doses appear immediately.
func (h *MedicationHandler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateMedicationRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name is required and cannot be empty after sanitization")
		return
	}
	req.Dosage = validation.SanitizeText(req.Dosage)
	if req.Notes != nil {
		sanitized := validation.SanitizeText(*req.Notes)
		req.Notes = &sanitized
	}

	ctx := r.Context()
	count, err := h.medicationRepo.CountByUserID(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create medication")
		return
	}

	med := &models.Medication{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		Times:     models.NormalizeTimes(req.Times),
		Notes:     req.Notes,
		Color:     models.PaletteColor(count),
	}

	if err := h.medicationRepo.Create(ctx, med); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create medication")
		return
	}

	if err := h.regenerateSchedule(r, user.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to regenerate schedule")
		return
	}

	respondJSON(w, http.StatusCreated, med)
}

// GetMedication retrieves a medication by ID
func (h *MedicationHandler) GetMedication(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid medication ID")
		return
	}

	med, err := h.medicationRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Medication not found")
		return
	}

	if med.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Medication does not belong to user")
		return
	}

	respondJSON(w, http.StatusOK, med)
}

// UpdateMedication updates an existing medication and regenerates today's
// schedule when dose times change.
func (h *MedicationHandler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid medication ID")
		return
	}

	ctx := r.Context()
	med, err := h.medicationRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Medication not found")
		return
	}

	if med.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Medication does not belong to user")
		return
	}

	var req UpdateMedicationRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	timesChanged := false
	if req.Name != nil {
		sanitized := validation.SanitizeText(*req.Name)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
			return
		}
		med.Name = sanitized
	}
	if req.Dosage != nil {
		med.Dosage = validation.SanitizeText(*req.Dosage)
	}
	if req.Frequency != nil {
		med.Frequency = *req.Frequency
	}
	if req.Times != nil {
		med.Times = models.NormalizeTimes(*req.Times)
		timesChanged = true
	}
	if req.Notes != nil {
		sanitized := validation.SanitizeText(*req.Notes)
		med.Notes = &sanitized
	}

	if err := h.medicationRepo.Update(ctx, med); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update medication")
		return
	}

	if timesChanged {
		if err := h.regenerateSchedule(r, user.ID); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to regenerate schedule")
			return
		}
	}

	respondJSON(w, http.StatusOK, med)
}

// DeleteMedication deletes a medication and removes its doses from today's
// schedule.
func (h *MedicationHandler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid medication ID")
		return
	}

	ctx := r.Context()
	med, err := h.medicationRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Medication not found")
		return
	}

	if med.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Medication does not belong to user")
		return
	}

	if err := h.medicationRepo.Delete(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete medication")
		return
	}

	if err := h.regenerateSchedule(r, user.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to regenerate schedule")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Medication deleted"})
}

// regenerateSchedule rebuilds today's snapshot from the current registry.
// Registry changes reset the day's taken state wholesale.
func (h *MedicationHandler) regenerateSchedule(r *http.Request, userID uuid.UUID) error {
	ctx := r.Context()
	meds, err := h.medicationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	user := middleware.UserFromContext(r)
	today := nowInUserZone(user).Format(models.DateFormat)
	entries := scheduleEntriesFor(meds)
	return h.scheduleRepo.Save(ctx, userID, today, entries)
}
