package repository

import (
	"context"

	"github.com/manusiele/TherapyFlow/internal/models"
)

type AssessmentRepository struct {
	db DBTX
}

func NewAssessmentRepository(db DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

type CreateAssessmentInput struct {
	PatientID  int64
	Instrument string
	Responses  []int
	Score      int
	Severity   string
}

func (r *AssessmentRepository) Create(
	ctx context.Context,
	input CreateAssessmentInput,
) (*models.Assessment, error) {
	query := `
		INSERT INTO assessments (patient_id, instrument, responses, score, severity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, patient_id, instrument, responses, score, severity, created_at
	`

	var assessment models.Assessment
	err := r.db.QueryRow(
		ctx,
		query,
		input.PatientID,
		input.Instrument,
		input.Responses,
		input.Score,
		input.Severity,
	).Scan(
		&assessment.ID,
		&assessment.PatientID,
		&assessment.Instrument,
		&assessment.Responses,
		&assessment.Score,
		&assessment.Severity,
		&assessment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *AssessmentRepository) ListByPatient(
	ctx context.Context,
	patientID int64,
) ([]models.Assessment, error) {
	query := `
		SELECT id, patient_id, instrument, responses, score, severity, created_at
		FROM assessments
		WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assessments := make([]models.Assessment, 0)
	for rows.Next() {
		var assessment models.Assessment
		if err := rows.Scan(
			&assessment.ID,
			&assessment.PatientID,
			&assessment.Instrument,
			&assessment.Responses,
			&assessment.Score,
			&assessment.Severity,
			&assessment.CreatedAt,
		); err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assessments, nil
}
