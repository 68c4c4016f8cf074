package handlers

import (
	"strings"
)

func validatePatientOnboardingRequest(req patientOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		return "phone is required"
	}
	if strings.TrimSpace(req.DateOfBirth) == "" {
		return "date_of_birth is required"
	}
	if strings.TrimSpace(req.EmergencyContact) == "" {
		return "emergency_contact is required"
	}
	if strings.TrimSpace(req.EmergencyPhone) == "" {
		return "emergency_phone is required"
	}
	return ""
}

func validateTherapistOnboardingRequest(req therapistOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if strings.TrimSpace(req.Bio) == "" {
		return "bio is required"
	}
	if len(req.Specializations) == 0 {
		return "specializations must contain at least one item"
	}
	for _, specialization := range req.Specializations {
		if strings.TrimSpace(specialization) == "" {
			return "specializations must not contain empty values"
		}
	}
	if strings.TrimSpace(req.LicenseNumber) == "" {
		return "license_number is required"
	}
	if req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	return ""
}

func validatePatientProfileUpdateRequest(req updatePatientProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) == "" {
		return "phone must not be empty"
	}
	if req.DateOfBirth != nil && strings.TrimSpace(*req.DateOfBirth) == "" {
		return "date_of_birth must not be empty"
	}
	if req.EmergencyContact != nil && strings.TrimSpace(*req.EmergencyContact) == "" {
		return "emergency_contact must not be empty"
	}
	if req.EmergencyPhone != nil && strings.TrimSpace(*req.EmergencyPhone) == "" {
		return "emergency_phone must not be empty"
	}
	return ""
}

func validateTherapistProfileUpdateRequest(req updateTherapistProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.Bio != nil && strings.TrimSpace(*req.Bio) == "" {
		return "bio must not be empty"
	}
	if req.Specializations != nil {
		for _, specialization := range *req.Specializations {
			if strings.TrimSpace(specialization) == "" {
				return "specializations must not contain empty values"
			}
		}
	}
	if req.LicenseNumber != nil && strings.TrimSpace(*req.LicenseNumber) == "" {
		return "license_number must not be empty"
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	return ""
}
