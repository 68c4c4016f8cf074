package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/repository"
	"github.com/manusiele/TherapyFlow/internal/services"
)

type stubSessionService struct {
	bookResult         *models.Session
	bookErr            error
	listResult         []models.Session
	listErr            error
	rosterResult       []models.Session
	patientsResult     []models.PatientRosterEntry
	getResult          *models.Session
	getErr             error
	updateResult       *models.Session
	updateErr          error
	notesResult        *models.Session
	notesErr           error
	updateStatusResult *models.Session
	updateStatusErr    error
	cancelResult       *models.Session
	cancelErr          error
	available          bool
	lastBookInput      services.BookSessionInput
	lastActorID        int64
	lastRole           string
	lastSessionID      int64
	lastTherapistID    int64
	lastStatus         string
	lastNotes          string
	lastListFilter     repository.SessionListFilter
	lastCheckTime      time.Time
	lastCheckDuration  int
}

func (s *stubSessionService) BookSession(_ context.Context, actorID int64, role string, input services.BookSessionInput) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookInput = input
	return s.bookResult, s.bookErr
}

func (s *stubSessionService) ListSessions(_ context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubSessionService) ListByTherapist(_ context.Context, therapistID int64) ([]models.Session, error) {
	s.lastTherapistID = therapistID
	return s.rosterResult, nil
}

func (s *stubSessionService) PatientRoster(_ context.Context, therapistID int64) ([]models.PatientRosterEntry, error) {
	s.lastTherapistID = therapistID
	return s.patientsResult, nil
}

func (s *stubSessionService) GetSession(_ context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) UpdateSession(_ context.Context, actorID int64, role string, sessionID int64, _ services.UpdateSessionInput) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.updateResult, s.updateErr
}

func (s *stubSessionService) SetNotes(_ context.Context, actorID int64, role string, sessionID int64, notes string) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	s.lastNotes = notes
	return s.notesResult, s.notesErr
}

func (s *stubSessionService) UpdateStatus(_ context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	s.lastStatus = requestedStatus
	return s.updateStatusResult, s.updateStatusErr
}

func (s *stubSessionService) CancelSession(_ context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.cancelResult, s.cancelErr
}

func (s *stubSessionService) CheckAvailability(_ context.Context, therapistID int64, requestedTime time.Time, durationMins int) (bool, error) {
	s.lastTherapistID = therapistID
	s.lastCheckTime = requestedTime
	s.lastCheckDuration = durationMins
	return s.available, nil
}

func sessionTestApp(service *stubSessionService, role, userID string) (*fiber.App, *SessionHandler) {
	handler := &SessionHandler{service: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	return app, handler
}

func TestBookSessionImpliesPatientFromToken(t *testing.T) {
	service := &stubSessionService{
		bookResult: &models.Session{
			ID:              91,
			PatientID:       42,
			TherapistID:     7,
			SessionType:     "individual",
			DurationMinutes: 50,
			Status:          models.SessionStatusPending,
		},
	}
	app, handler := sessionTestApp(service, "patient", "42")
	app.Post("/api/v1/sessions/book", handler.BookSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{
		"therapist_id": 7,
		"session_type": "individual",
		"scheduled_at": "2026-03-15T09:00:00Z",
		"duration_minutes": 50
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastBookInput.PatientID != 42 {
		t.Fatalf("expected patient id from token, got %d", service.lastBookInput.PatientID)
	}
	if service.lastBookInput.TherapistID != 7 {
		t.Fatalf("expected therapist id 7, got %d", service.lastBookInput.TherapistID)
	}
}

func TestBookSessionReturnsConflict(t *testing.T) {
	service := &stubSessionService{bookErr: services.ErrConflict}
	app, handler := sessionTestApp(service, "patient", "42")
	app.Post("/api/v1/sessions/book", handler.BookSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{
		"therapist_id": 7,
		"session_type": "individual",
		"scheduled_at": "2026-03-15T09:00:00Z",
		"duration_minutes": 50
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListSessionsPassesStatusAndTimeframe(t *testing.T) {
	service := &stubSessionService{
		listResult: []models.Session{{ID: 5, Status: models.SessionStatusConfirmed}},
	}
	app, handler := sessionTestApp(service, "therapist", "9")
	app.Get("/api/v1/sessions", handler.ListSessions)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?status=confirmed&timeframe=upcoming", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != "therapist" {
		t.Fatalf("expected therapist role, got %q", service.lastRole)
	}
	if service.lastListFilter.Status != "confirmed" || service.lastListFilter.Timeframe != "upcoming" {
		t.Fatalf("unexpected filter: %+v", service.lastListFilter)
	}
}

func TestListSessionsRejectsUnknownTimeframe(t *testing.T) {
	app, handler := sessionTestApp(&stubSessionService{}, "patient", "42")
	app.Get("/api/v1/sessions", handler.ListSessions)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?timeframe=someday", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTherapistSessionsRequiresOwnID(t *testing.T) {
	service := &stubSessionService{rosterResult: []models.Session{{ID: 1, TherapistID: 7}}}
	app, handler := sessionTestApp(service, "therapist", "7")
	app.Get("/api/v1/therapists/:id/sessions", handler.TherapistSessions)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/therapists/8/sessions", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for another therapist's roster, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/therapists/7/sessions", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTherapistID != 7 {
		t.Fatalf("expected roster for therapist 7, got %d", service.lastTherapistID)
	}
}

func TestTherapistPatientsReturnsCaseload(t *testing.T) {
	name := "Jordan Avery"
	service := &stubSessionService{
		patientsResult: []models.PatientRosterEntry{
			{PatientID: 42, Email: "jordan@example.com", FullName: &name, SessionCount: 6, CompletedCount: 4},
		},
	}
	app, handler := sessionTestApp(service, "therapist", "7")
	app.Get("/api/v1/therapists/:id/patients", handler.TherapistPatients)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/therapists/8/patients", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for another therapist's caseload, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/therapists/7/patients", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Patients []models.PatientRosterEntry `json:"patients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Patients) != 1 || body.Patients[0].PatientID != 42 {
		t.Fatalf("expected patient 42 in the caseload, got %+v", body.Patients)
	}
	if body.Patients[0].SessionCount != 6 || body.Patients[0].CompletedCount != 4 {
		t.Fatalf("expected counts carried through, got %+v", body.Patients[0])
	}
	if service.lastTherapistID != 7 {
		t.Fatalf("expected caseload for therapist 7, got %d", service.lastTherapistID)
	}
}

func TestDayScheduleFiltersByDate(t *testing.T) {
	service := &stubSessionService{
		listResult: []models.Session{
			{ID: 1, ScheduledAt: time.Date(2026, 3, 18, 9, 0, 0, 0, time.Local)},
			{ID: 2, ScheduledAt: time.Date(2026, 3, 19, 9, 0, 0, 0, time.Local)},
		},
	}
	app, handler := sessionTestApp(service, "patient", "42")
	app.Get("/api/v1/schedule/day", handler.DaySchedule)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/day?date=2026-03-18", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Date     string           `json:"date"`
		Sessions []models.Session `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Date != "2026-03-18" {
		t.Fatalf("expected date echoed back, got %q", body.Date)
	}
	if len(body.Sessions) != 1 || body.Sessions[0].ID != 1 {
		t.Fatalf("expected only session 1, got %+v", body.Sessions)
	}
}

func TestWeekScheduleStartsOnSunday(t *testing.T) {
	service := &stubSessionService{listResult: []models.Session{}}
	app, handler := sessionTestApp(service, "therapist", "7")
	app.Get("/api/v1/schedule/week", handler.WeekSchedule)

	// 2026-03-18 is a Wednesday; its week starts Sunday 2026-03-15.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/week?anchor=2026-03-18", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		WeekStart string             `json:"week_start"`
		Days      []services.WeekDay `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.WeekStart != "2026-03-15" {
		t.Fatalf("expected week start 2026-03-15, got %q", body.WeekStart)
	}
	if len(body.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(body.Days))
	}
}

func TestGetSessionReturnsNotFound(t *testing.T) {
	service := &stubSessionService{getErr: pgx.ErrNoRows}
	app, handler := sessionTestApp(service, "patient", "42")
	app.Get("/api/v1/sessions/:id", handler.GetSession)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateStatusReturnsUnprocessableForInvalidTransition(t *testing.T) {
	service := &stubSessionService{updateStatusErr: services.ErrInvalidStateTransition}
	app, handler := sessionTestApp(service, "therapist", "7")
	app.Put("/api/v1/sessions/:id/status", handler.UpdateStatus)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/55/status", strings.NewReader(`{"status":"complete"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastStatus != "complete" {
		t.Fatalf("expected forwarded status, got %q", service.lastStatus)
	}
}

func TestSetNotesForwardsBody(t *testing.T) {
	service := &stubSessionService{
		notesResult: &models.Session{ID: 55, Status: models.SessionStatusConfirmed},
	}
	app, handler := sessionTestApp(service, "therapist", "7")
	app.Put("/api/v1/sessions/:id/notes", handler.SetNotes)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/55/notes", strings.NewReader(`{"notes":"homework assigned"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastNotes != "homework assigned" {
		t.Fatalf("expected notes forwarded, got %q", service.lastNotes)
	}
	if service.lastSessionID != 55 {
		t.Fatalf("expected session 55, got %d", service.lastSessionID)
	}
}

func TestCancelSessionReturnsCancelledRow(t *testing.T) {
	service := &stubSessionService{
		cancelResult: &models.Session{ID: 55, Status: models.SessionStatusCancelled},
	}
	app, handler := sessionTestApp(service, "patient", "42")
	app.Delete("/api/v1/sessions/:id", handler.CancelSession)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/55", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Session models.Session `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Session.Status != models.SessionStatusCancelled {
		t.Fatalf("expected cancelled row back, got %q", body.Session.Status)
	}
}

func TestCheckAvailabilityParsesQuery(t *testing.T) {
	service := &stubSessionService{available: true}
	app, handler := sessionTestApp(service, "patient", "42")
	app.Get("/api/v1/sessions/availability", handler.CheckAvailability)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/sessions/availability?therapist_id=7&scheduled_at=2026-03-15T09:00:00Z&duration_minutes=50", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTherapistID != 7 || service.lastCheckDuration != 50 {
		t.Fatalf("unexpected forwarded query: therapist %d duration %d", service.lastTherapistID, service.lastCheckDuration)
	}

	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/sessions/availability?therapist_id=7&scheduled_at=2026-03-15T09:00:00Z&duration_minutes=37", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for odd duration, got %d", resp.StatusCode)
	}
}
