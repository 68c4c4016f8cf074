package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/services"
)

type assessmentApplicationService interface {
	SubmitAssessment(ctx context.Context, patientID int64, role string, instrument string, responses []int) (*models.Assessment, error)
	ListAssessments(ctx context.Context, actorID int64, role string, patientID int64) ([]models.Assessment, error)
}

type AssessmentHandler struct {
	service assessmentApplicationService
}

func NewAssessmentHandler(service *services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

type submitAssessmentRequest struct {
	Instrument string `json:"instrument"`
	Responses  []int  `json:"responses"`
}

func (h *AssessmentHandler) SubmitAssessment(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RolePatient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req submitAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	instrument := strings.ToLower(strings.TrimSpace(req.Instrument))

	assessment, err := h.service.SubmitAssessment(c.Context(), actorID, role, instrument, req.Responses)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assessment": assessment})
}

func (h *AssessmentHandler) ListAssessments(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != models.RolePatient && role != models.RoleTherapist) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	patientID := actorID
	if raw := strings.TrimSpace(c.Query("patient_id")); raw != "" {
		patientID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || patientID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid patient id"})
		}
	}

	assessments, err := h.service.ListAssessments(c.Context(), actorID, role, patientID)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	return c.JSON(fiber.Map{"assessments": assessments})
}

func mapAssessmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrIncompleteAssessment):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Every question needs one answer between 0 and 3"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "instrument must be phq9 or gad7"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrPatientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Patient not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process assessment"})
	}
}
