package models

import "time"

type PatientProfile struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	FullName           *string    `json:"full_name"`
	Phone              *string    `json:"phone"`
	DateOfBirth        *time.Time `json:"date_of_birth"`
	EmergencyContact   *string    `json:"emergency_contact"`
	EmergencyPhone     *string    `json:"emergency_phone"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type TherapistProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	Bio                *string   `json:"bio"`
	Specializations    *[]string `json:"specializations"`
	LicenseNumber      *string   `json:"license_number"`
	ExperienceYears    *int      `json:"experience_years"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
