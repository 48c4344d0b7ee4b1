package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/medtrack/medtrack/internal/models"
)

func newScheduleRouter(h *ScheduleHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/schedule").Subrouter())
	return r
}

func seedMedication(t *testing.T, repo *mockMedicationRepo, userID uuid.UUID, times ...string) *models.Medication {
	t.Helper()
	med := &models.Medication{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Paracetamol",
		Dosage: "500mg",
		Times:  models.NormalizeTimes(times),
		Color:  models.PaletteColor(0),
	}
	if err := repo.Create(nil, med); err != nil {
		t.Fatalf("seed medication: %v", err)
	}
	return med
}

func TestScheduleHandler_Today_GeneratesSchedule(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	schedRepo := newMockScheduleRepo()
	seedMedication(t, medRepo, user.ID, "08:00", "20:00")

	h := NewScheduleHandler(medRepo, schedRepo, 0)
	router := newScheduleRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/schedule/today", nil, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TodayResponse
	decodeData(t, rec, &resp)

	if resp.Date != time.Now().UTC().Format(models.DateFormat) {
		t.Errorf("Expected today's date, got %s", resp.Date)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].Time != "08:00" || resp.Entries[1].Time != "20:00" {
		t.Errorf("Expected ordered times, got %v, %v", resp.Entries[0].Time, resp.Entries[1].Time)
	}
	if resp.Progress.Total != 2 || resp.Progress.Taken != 0 || resp.Progress.Percentage != 0 {
		t.Errorf("Expected 0/2 progress, got %+v", resp.Progress)
	}

	// Second call must not reset the snapshot
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/schedule/today", nil, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on second call, got %d", rec.Code)
	}
}

func TestScheduleHandler_Toggle(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	schedRepo := newMockScheduleRepo()
	med := seedMedication(t, medRepo, user.ID, "08:00")

	h := NewScheduleHandler(medRepo, schedRepo, 0)
	router := newScheduleRouter(h)

	body, _ := json.Marshal(ToggleRequest{MedicationID: med.ID, Time: "08:00"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/schedule/toggle", body, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TodayResponse
	decodeData(t, rec, &resp)
	if !resp.Entries[0].Taken {
		t.Error("Expected dose to be taken after toggle")
	}
	if resp.Entries[0].TakenAt == nil {
		t.Error("Expected taken_at to be set")
	}
	if resp.Progress.Percentage != 100 {
		t.Errorf("Expected 100%% progress, got %v", resp.Progress.Percentage)
	}

	// Toggling again reverts to untaken
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/schedule/toggle", body, user))
	resp = TodayResponse{} // reset: fields omitted from JSON would otherwise keep stale values
	decodeData(t, rec, &resp)
	if resp.Entries[0].Taken {
		t.Error("Expected dose to be untaken after second toggle")
	}
	if resp.Entries[0].TakenAt != nil {
		t.Error("Expected taken_at to be cleared")
	}
}

func TestScheduleHandler_Toggle_UnknownPair(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	med := seedMedication(t, medRepo, user.ID, "08:00")

	h := NewScheduleHandler(medRepo, newMockScheduleRepo(), 0)
	router := newScheduleRouter(h)

	// An unknown (medication, time) pair is a defensive no-op, not an error
	body, _ := json.Marshal(ToggleRequest{MedicationID: med.ID, Time: "09:00"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/schedule/toggle", body, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unknown dose, got %d", rec.Code)
	}

	var resp TodayResponse
	decodeData(t, rec, &resp)
	if resp.Changed == nil || *resp.Changed {
		t.Error("Expected changed:false for unknown dose")
	}
	if resp.Entries[0].Taken {
		t.Error("Expected the real 08:00 dose to stay untaken")
	}
}

func TestScheduleHandler_Skip(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	med := seedMedication(t, medRepo, user.ID, "08:00")

	h := NewScheduleHandler(medRepo, newMockScheduleRepo(), 0)
	router := newScheduleRouter(h)

	body, _ := json.Marshal(SkipRequest{MedicationID: med.ID, Time: "08:00", Reason: models.SkipReasonForgot})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/schedule/skip", body, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TodayResponse
	decodeData(t, rec, &resp)
	if resp.Changed == nil || !*resp.Changed {
		t.Error("Expected changed:true after skip")
	}
	if !resp.Entries[0].Skipped {
		t.Error("Expected dose to be skipped")
	}
	if resp.Entries[0].SkipReason != models.SkipReasonForgot {
		t.Errorf("Expected reason forgot, got %s", resp.Entries[0].SkipReason)
	}
	// Skipped doses do not count as taken
	if resp.Progress.Taken != 0 {
		t.Errorf("Expected 0 taken, got %d", resp.Progress.Taken)
	}
}

func TestScheduleHandler_Skip_InvalidReason(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	med := seedMedication(t, medRepo, user.ID, "08:00")

	h := NewScheduleHandler(medRepo, newMockScheduleRepo(), 0)
	router := newScheduleRouter(h)

	body, _ := json.Marshal(map[string]string{
		"medication_id": med.ID.String(),
		"time":          "08:00",
		"reason":        "just because",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/schedule/skip", body, user))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid reason, got %d", rec.Code)
	}
}

func TestScheduleHandler_Upcoming_Limit(t *testing.T) {
	t.Parallel()

	user := testUser()
	medRepo := newMockMedicationRepo()
	// All doses at 23:59 so they are upcoming for almost the entire day
	seedMedication(t, medRepo, user.ID, "23:57")
	seedMedication(t, medRepo, user.ID, "23:58")
	seedMedication(t, medRepo, user.ID, "23:59")

	h := NewScheduleHandler(medRepo, newMockScheduleRepo(), 0)
	router := newScheduleRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/schedule/upcoming?limit=2", nil, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var upcoming []models.DoseOccurrence
	decodeData(t, rec, &upcoming)
	if len(upcoming) > 2 {
		t.Errorf("Expected at most 2 upcoming doses, got %d", len(upcoming))
	}
}
