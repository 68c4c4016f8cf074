package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/services"
)

type stubAssessmentService struct {
	submitResult   *models.Assessment
	submitErr      error
	listResult     []models.Assessment
	listErr        error
	lastPatientID  int64
	lastActorID    int64
	lastRole       string
	lastInstrument string
	lastResponses  []int
}

func (s *stubAssessmentService) SubmitAssessment(_ context.Context, patientID int64, role string, instrument string, responses []int) (*models.Assessment, error) {
	s.lastPatientID = patientID
	s.lastRole = role
	s.lastInstrument = instrument
	s.lastResponses = responses
	return s.submitResult, s.submitErr
}

func (s *stubAssessmentService) ListAssessments(_ context.Context, actorID int64, role string, patientID int64) ([]models.Assessment, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastPatientID = patientID
	return s.listResult, s.listErr
}

func assessmentTestApp(service *stubAssessmentService, role, userID string) (*fiber.App, *AssessmentHandler) {
	handler := &AssessmentHandler{service: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	return app, handler
}

func TestSubmitAssessmentNormalizesInstrument(t *testing.T) {
	service := &stubAssessmentService{
		submitResult: &models.Assessment{
			ID:         3,
			PatientID:  42,
			Instrument: models.InstrumentPHQ9,
			Score:      9,
			Severity:   "Mild",
		},
	}
	app, handler := assessmentTestApp(service, "patient", "42")
	app.Post("/api/v1/assessments", handler.SubmitAssessment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(`{
		"instrument": " PHQ9 ",
		"responses": [1,1,1,1,1,1,1,1,1]
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
	if service.lastInstrument != "phq9" {
		t.Fatalf("expected lowercased instrument, got %q", service.lastInstrument)
	}
	if len(service.lastResponses) != 9 {
		t.Fatalf("expected 9 responses forwarded, got %d", len(service.lastResponses))
	}

	var body struct {
		Assessment models.Assessment `json:"assessment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Assessment.Severity != "Mild" {
		t.Fatalf("expected Mild severity, got %q", body.Assessment.Severity)
	}
}

func TestSubmitAssessmentRejectsTherapistRole(t *testing.T) {
	app, handler := assessmentTestApp(&stubAssessmentService{}, "therapist", "7")
	app.Post("/api/v1/assessments", handler.SubmitAssessment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(`{
		"instrument": "gad7",
		"responses": [0,0,0,0,0,0,0]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSubmitAssessmentIncompleteVector(t *testing.T) {
	service := &stubAssessmentService{submitErr: services.ErrIncompleteAssessment}
	app, handler := assessmentTestApp(service, "patient", "42")
	app.Post("/api/v1/assessments", handler.SubmitAssessment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(`{
		"instrument": "gad7",
		"responses": [0,0,0]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListAssessmentsDefaultsToSelf(t *testing.T) {
	service := &stubAssessmentService{
		listResult: []models.Assessment{{ID: 1, PatientID: 42, Instrument: models.InstrumentGAD7}},
	}
	app, handler := assessmentTestApp(service, "patient", "42")
	app.Get("/api/v1/assessments", handler.ListAssessments)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPatientID != 42 {
		t.Fatalf("expected own history requested, got patient %d", service.lastPatientID)
	}
}

func TestListAssessmentsTherapistPicksPatient(t *testing.T) {
	service := &stubAssessmentService{listResult: []models.Assessment{}}
	app, handler := assessmentTestApp(service, "therapist", "7")
	app.Get("/api/v1/assessments", handler.ListAssessments)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments?patient_id=42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPatientID != 42 || service.lastActorID != 7 {
		t.Fatalf("expected therapist 7 reviewing patient 42, got actor %d patient %d", service.lastActorID, service.lastPatientID)
	}
}
