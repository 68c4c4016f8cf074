package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manusiele/TherapyFlow/internal/models"
)

type PatientProfileRepository struct {
	db DBTX
}

func NewPatientProfileRepository(db DBTX) *PatientProfileRepository {
	return &PatientProfileRepository{db: db}
}

const patientProfileColumns = "id, user_id, full_name, phone, date_of_birth, emergency_contact, emergency_phone, onboarding_complete, created_at, updated_at"

func (r *PatientProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO patient_profiles (user_id)
		VALUES ($1)
	`, userID)
	return err
}

func (r *PatientProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.PatientProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM patient_profiles
		WHERE user_id = $1
	`, patientProfileColumns)

	var profile models.PatientProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Phone,
		&profile.DateOfBirth,
		&profile.EmergencyContact,
		&profile.EmergencyPhone,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type UpdatePatientProfileInput struct {
	FullName         *string
	Phone            *string
	DateOfBirth      *time.Time
	EmergencyContact *string
	EmergencyPhone   *string
	MarkOnboarded    bool
}

func (r *PatientProfileRepository) Update(
	ctx context.Context,
	userID int64,
	input UpdatePatientProfileInput,
) (*models.PatientProfile, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{userID}

	if input.FullName != nil {
		args = append(args, *input.FullName)
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if input.Phone != nil {
		args = append(args, *input.Phone)
		setParts = append(setParts, fmt.Sprintf("phone = $%d", len(args)))
	}
	if input.DateOfBirth != nil {
		args = append(args, *input.DateOfBirth)
		setParts = append(setParts, fmt.Sprintf("date_of_birth = $%d", len(args)))
	}
	if input.EmergencyContact != nil {
		args = append(args, *input.EmergencyContact)
		setParts = append(setParts, fmt.Sprintf("emergency_contact = $%d", len(args)))
	}
	if input.EmergencyPhone != nil {
		args = append(args, *input.EmergencyPhone)
		setParts = append(setParts, fmt.Sprintf("emergency_phone = $%d", len(args)))
	}
	if input.MarkOnboarded {
		setParts = append(setParts, "onboarding_complete = TRUE")
	}

	query := fmt.Sprintf(`
		UPDATE patient_profiles
		SET %s
		WHERE user_id = $1
		RETURNING %s
	`, strings.Join(setParts, ", "), patientProfileColumns)

	var profile models.PatientProfile
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Phone,
		&profile.DateOfBirth,
		&profile.EmergencyContact,
		&profile.EmergencyPhone,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type TherapistProfileRepository struct {
	db DBTX
}

func NewTherapistProfileRepository(db DBTX) *TherapistProfileRepository {
	return &TherapistProfileRepository{db: db}
}

const therapistProfileColumns = "id, user_id, full_name, bio, specializations, license_number, experience_years, onboarding_complete, created_at, updated_at"

func (r *TherapistProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO therapist_profiles (user_id)
		VALUES ($1)
	`, userID)
	return err
}

func (r *TherapistProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.TherapistProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM therapist_profiles
		WHERE user_id = $1
	`, therapistProfileColumns)

	var profile models.TherapistProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Bio,
		&profile.Specializations,
		&profile.LicenseNumber,
		&profile.ExperienceYears,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type UpdateTherapistProfileInput struct {
	FullName        *string
	Bio             *string
	Specializations *[]string
	LicenseNumber   *string
	ExperienceYears *int
	MarkOnboarded   bool
}

func (r *TherapistProfileRepository) Update(
	ctx context.Context,
	userID int64,
	input UpdateTherapistProfileInput,
) (*models.TherapistProfile, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{userID}

	if input.FullName != nil {
		args = append(args, *input.FullName)
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if input.Bio != nil {
		args = append(args, *input.Bio)
		setParts = append(setParts, fmt.Sprintf("bio = $%d", len(args)))
	}
	if input.Specializations != nil {
		args = append(args, *input.Specializations)
		setParts = append(setParts, fmt.Sprintf("specializations = $%d", len(args)))
	}
	if input.LicenseNumber != nil {
		args = append(args, *input.LicenseNumber)
		setParts = append(setParts, fmt.Sprintf("license_number = $%d", len(args)))
	}
	if input.ExperienceYears != nil {
		args = append(args, *input.ExperienceYears)
		setParts = append(setParts, fmt.Sprintf("experience_years = $%d", len(args)))
	}
	if input.MarkOnboarded {
		setParts = append(setParts, "onboarding_complete = TRUE")
	}

	query := fmt.Sprintf(`
		UPDATE therapist_profiles
		SET %s
		WHERE user_id = $1
		RETURNING %s
	`, strings.Join(setParts, ", "), therapistProfileColumns)

	var profile models.TherapistProfile
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Bio,
		&profile.Specializations,
		&profile.LicenseNumber,
		&profile.ExperienceYears,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
