package services

import (
	"context"
	"errors"

	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/repository"
)

var ErrIncompleteAssessment = errors.New("incomplete assessment")

// questionCounts maps each screening instrument to its question count.
var questionCounts = map[string]int{
	models.InstrumentPHQ9: 9,
	models.InstrumentGAD7: 7,
}

// ScoreAssessment sums a full response vector. Every question must carry
// exactly one answer in [0,3].
func ScoreAssessment(instrument string, responses []int) (int, error) {
	count, ok := questionCounts[instrument]
	if !ok {
		return 0, ErrInvalidInput
	}
	if len(responses) != count {
		return 0, ErrIncompleteAssessment
	}

	score := 0
	for _, response := range responses {
		if response < 0 || response > 3 {
			return 0, ErrIncompleteAssessment
		}
		score += response
	}
	return score, nil
}

// ClassifySeverity maps a score to the instrument's severity band.
// PHQ-9: 0-4 Minimal, 5-9 Mild, 10-14 Moderate, 15-19 Moderately Severe, 20-27 Severe.
// GAD-7: 0-4 Minimal, 5-9 Mild, 10-14 Moderate, 15-21 Severe.
func ClassifySeverity(instrument string, score int) (string, error) {
	switch instrument {
	case models.InstrumentPHQ9:
		switch {
		case score <= 4:
			return "Minimal", nil
		case score <= 9:
			return "Mild", nil
		case score <= 14:
			return "Moderate", nil
		case score <= 19:
			return "Moderately Severe", nil
		default:
			return "Severe", nil
		}
	case models.InstrumentGAD7:
		switch {
		case score <= 4:
			return "Minimal", nil
		case score <= 9:
			return "Mild", nil
		case score <= 14:
			return "Moderate", nil
		default:
			return "Severe", nil
		}
	default:
		return "", ErrInvalidInput
	}
}

type assessmentStore interface {
	Create(ctx context.Context, input repository.CreateAssessmentInput) (*models.Assessment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Assessment, error)
}

type AssessmentService struct {
	assessmentRepo assessmentStore
	userRepo       userReader
}

func NewAssessmentService(
	assessmentRepo *repository.AssessmentRepository,
	userRepo userReader,
) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
	}
}

// SubmitAssessment scores and stores a patient's screening responses.
func (s *AssessmentService) SubmitAssessment(
	ctx context.Context,
	patientID int64,
	role string,
	instrument string,
	responses []int,
) (*models.Assessment, error) {
	if role != models.RolePatient {
		return nil, ErrForbidden
	}

	score, err := ScoreAssessment(instrument, responses)
	if err != nil {
		return nil, err
	}
	severity, err := ClassifySeverity(instrument, score)
	if err != nil {
		return nil, err
	}

	return s.assessmentRepo.Create(ctx, repository.CreateAssessmentInput{
		PatientID:  patientID,
		Instrument: instrument,
		Responses:  responses,
		Score:      score,
		Severity:   severity,
	})
}

// ListAssessments returns a patient's history. Patients see their own;
// therapists may review any patient they are asked about.
func (s *AssessmentService) ListAssessments(
	ctx context.Context,
	actorID int64,
	role string,
	patientID int64,
) ([]models.Assessment, error) {
	switch role {
	case models.RolePatient:
		if patientID != actorID {
			return nil, ErrForbidden
		}
	case models.RoleTherapist:
		if patientID <= 0 {
			return nil, ErrInvalidInput
		}
		patient, err := s.userRepo.GetByID(ctx, patientID)
		if err != nil || patient.Role != models.RolePatient {
			return nil, ErrPatientNotFound
		}
	default:
		return nil, ErrForbidden
	}

	return s.assessmentRepo.ListByPatient(ctx, patientID)
}
