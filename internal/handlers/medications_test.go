package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/medtrack/medtrack/internal/middleware"
	"github.com/medtrack/medtrack/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "test@example.com", Timezone: "UTC"}
}

func authedRequest(method, target string, body []byte, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.SetUserInContext(req.Context(), user))
}

func newMedicationRouter(h *MedicationHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/medications").Subrouter())
	return r
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("Expected success envelope, got %s", rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
}

func TestMedicationHandler_Create(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	schedRepo := newMockScheduleRepo()
	h := NewMedicationHandler(medRepo, schedRepo)
	router := newMedicationRouter(h)

	body, _ := json.Marshal(CreateMedicationRequest{
		Name:      "Paracetamol",
		Dosage:    "500mg",
		Frequency: "twice daily",
		Times:     []string{"20:00", "08:00", "08:00"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/medications", body, user))

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var med models.Medication
	decodeData(t, rec, &med)

	if med.Name != "Paracetamol" {
		t.Errorf("Expected name Paracetamol, got %s", med.Name)
	}
	// Times are deduplicated and sorted
	if len(med.Times) != 2 || med.Times[0] != "08:00" || med.Times[1] != "20:00" {
		t.Errorf("Expected normalized times [08:00 20:00], got %v", med.Times)
	}
	// First medication gets the first palette color
	if med.Color != models.PaletteColor(0) {
		t.Errorf("Expected color %s, got %s", models.PaletteColor(0), med.Color)
	}

	// Today's schedule snapshot is regenerated
	latest, err := schedRepo.GetLatest(nil, user.ID)
	if err != nil {
		t.Fatalf("Expected snapshot after create: %v", err)
	}
	if len(latest.Entries) != 2 {
		t.Errorf("Expected 2 schedule entries, got %d", len(latest.Entries))
	}
}

func TestMedicationHandler_Create_PaletteWraps(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	h := NewMedicationHandler(medRepo, newMockScheduleRepo())
	router := newMedicationRouter(h)

	var lastColor string
	for i := 0; i < len(models.Palette)+1; i++ {
		body, _ := json.Marshal(CreateMedicationRequest{
			Name:   "Med",
			Dosage: "1mg",
			Times:  []string{"08:00"},
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest("POST", "/medications", body, user))
		if rec.Code != http.StatusCreated {
			t.Fatalf("Create %d: expected 201, got %d", i, rec.Code)
		}
		var med models.Medication
		decodeData(t, rec, &med)
		lastColor = med.Color
	}

	if lastColor != models.PaletteColor(0) {
		t.Errorf("Expected palette to wrap to %s, got %s", models.PaletteColor(0), lastColor)
	}
}

func TestMedicationHandler_Create_InvalidTime(t *testing.T) {
	t.Parallel()

	h := NewMedicationHandler(newMockMedicationRepo(), newMockScheduleRepo())
	router := newMedicationRouter(h)

	body, _ := json.Marshal(CreateMedicationRequest{
		Name:   "Paracetamol",
		Dosage: "500mg",
		Times:  []string{"25:00"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/medications", body, testUser()))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid time, got %d", rec.Code)
	}
}

func TestMedicationHandler_Get_WrongOwner(t *testing.T) {
	t.Parallel()

	owner := testUser()
	intruder := testUser()
	medRepo := newMockMedicationRepo()
	medID := uuid.New()
	_ = medRepo.Create(nil, &models.Medication{ID: medID, UserID: owner.ID, Name: "Secret", Dosage: "1mg", Times: []string{"08:00"}})

	h := NewMedicationHandler(medRepo, newMockScheduleRepo())
	router := newMedicationRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/medications/"+medID.String(), nil, intruder))

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}

func TestMedicationHandler_Delete_RemovesFromSchedule(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	schedRepo := newMockScheduleRepo()
	h := NewMedicationHandler(medRepo, schedRepo)
	router := newMedicationRouter(h)

	body, _ := json.Marshal(CreateMedicationRequest{Name: "Paracetamol", Dosage: "500mg", Times: []string{"08:00"}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/medications", body, user))
	var med models.Medication
	decodeData(t, rec, &med)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("DELETE", "/medications/"+med.ID.String(), nil, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	latest, err := schedRepo.GetLatest(nil, user.ID)
	if err != nil {
		t.Fatalf("Expected snapshot to remain: %v", err)
	}
	if len(latest.Entries) != 0 {
		t.Errorf("Expected empty schedule after delete, got %d entries", len(latest.Entries))
	}
}

func TestMedicationHandler_Unauthorized(t *testing.T) {
	t.Parallel()

	h := NewMedicationHandler(newMockMedicationRepo(), newMockScheduleRepo())
	router := newMedicationRouter(h)

	req := httptest.NewRequest("GET", "/medications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}
