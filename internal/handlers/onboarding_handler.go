package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/repository"
)

type OnboardingHandler struct {
	patientProfileRepo   patientProfileStore
	therapistProfileRepo therapistProfileStore
}

func NewOnboardingHandler(patientProfileRepo patientProfileStore, therapistProfileRepo therapistProfileStore) *OnboardingHandler {
	return &OnboardingHandler{
		patientProfileRepo:   patientProfileRepo,
		therapistProfileRepo: therapistProfileRepo,
	}
}

type patientOnboardingRequest struct {
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	DateOfBirth      string `json:"date_of_birth"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
}

type therapistOnboardingRequest struct {
	FullName        string   `json:"full_name"`
	Bio             string   `json:"bio"`
	Specializations []string `json:"specializations"`
	LicenseNumber   string   `json:"license_number"`
	ExperienceYears int      `json:"experience_years"`
}

func (h *OnboardingHandler) PatientOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RolePatient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req patientOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validatePatientOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_of_birth must be in YYYY-MM-DD format"})
	}

	profile, err := h.patientProfileRepo.Update(c.Context(), userID, repository.UpdatePatientProfileInput{
		FullName:         &req.FullName,
		Phone:            &req.Phone,
		DateOfBirth:      &dateOfBirth,
		EmergencyContact: &req.EmergencyContact,
		EmergencyPhone:   &req.EmergencyPhone,
		MarkOnboarded:    true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *OnboardingHandler) TherapistOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleTherapist {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req therapistOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateTherapistOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.therapistProfileRepo.Update(c.Context(), userID, repository.UpdateTherapistProfileInput{
		FullName:        &req.FullName,
		Bio:             &req.Bio,
		Specializations: &req.Specializations,
		LicenseNumber:   &req.LicenseNumber,
		ExperienceYears: &req.ExperienceYears,
		MarkOnboarded:   true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}
