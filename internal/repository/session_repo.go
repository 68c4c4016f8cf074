package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manusiele/TherapyFlow/internal/models"
)

type CreateSessionInput struct {
	PatientID       int64
	TherapistID     int64
	SessionType     string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
	Notes           *string
}

type UpdateSessionInput struct {
	SessionType     *string
	ScheduledAt     *time.Time
	DurationMinutes *int
	Notes           *string
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

const sessionColumns = "id, patient_id, therapist_id, session_type, scheduled_at, duration_min, status, notes, created_at, updated_at"

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.PatientID,
		&session.TherapistID,
		&session.SessionType,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Status,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (patient_id, therapist_id, session_type, scheduled_at, duration_min, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, sessionColumns)

	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.PatientID,
		input.TherapistID,
		input.SessionType,
		input.ScheduledAt,
		input.DurationMinutes,
		input.Status,
		input.Notes,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE id = $1
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(
	ctx context.Context,
	sessionID int64,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	actorColumn := "patient_id"
	if filter.Role == models.RoleTherapist {
		actorColumn = "therapist_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_at ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *SessionRepository) ListByTherapist(
	ctx context.Context,
	therapistID int64,
) ([]models.Session, error) {
	return r.List(ctx, SessionListFilter{ActorID: therapistID, Role: models.RoleTherapist})
}

// PatientRoster aggregates a therapist's caseload from their sessions.
// Cancelled sessions never count toward the roster.
func (r *SessionRepository) PatientRoster(
	ctx context.Context,
	therapistID int64,
) ([]models.PatientRosterEntry, error) {
	query := `
		SELECT s.patient_id,
		       u.email,
		       pp.full_name,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE s.status = 'completed'),
		       MAX(s.scheduled_at) FILTER (WHERE s.scheduled_at <= NOW()),
		       MIN(s.scheduled_at) FILTER (WHERE s.scheduled_at > NOW())
		FROM sessions s
		JOIN users u ON u.id = s.patient_id
		LEFT JOIN patient_profiles pp ON pp.user_id = s.patient_id
		WHERE s.therapist_id = $1
		  AND s.status <> 'cancelled'
		GROUP BY s.patient_id, u.email, pp.full_name
		ORDER BY pp.full_name NULLS LAST, u.email
	`

	rows, err := r.db.Query(ctx, query, therapistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]models.PatientRosterEntry, 0)
	for rows.Next() {
		var entry models.PatientRosterEntry
		err := rows.Scan(
			&entry.PatientID,
			&entry.Email,
			&entry.FullName,
			&entry.SessionCount,
			&entry.CompletedCount,
			&entry.LastSessionAt,
			&entry.NextSessionAt,
		)
		if err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roster, nil
}

// Update applies the non-nil fields of input to one session row.
func (r *SessionRepository) Update(
	ctx context.Context,
	sessionID int64,
	input UpdateSessionInput,
) (*models.Session, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{sessionID}

	if input.SessionType != nil {
		args = append(args, *input.SessionType)
		setParts = append(setParts, fmt.Sprintf("session_type = $%d", len(args)))
	}
	if input.ScheduledAt != nil {
		args = append(args, *input.ScheduledAt)
		setParts = append(setParts, fmt.Sprintf("scheduled_at = $%d", len(args)))
	}
	if input.DurationMinutes != nil {
		args = append(args, *input.DurationMinutes)
		setParts = append(setParts, fmt.Sprintf("duration_min = $%d", len(args)))
	}
	if input.Notes != nil {
		args = append(args, *input.Notes)
		setParts = append(setParts, fmt.Sprintf("notes = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE sessions
		SET %s
		WHERE id = $1
		RETURNING %s
	`, strings.Join(setParts, ", "), sessionColumns)

	return scanSession(r.db.QueryRow(ctx, query, args...))
}

func (r *SessionRepository) SetNotes(
	ctx context.Context,
	sessionID int64,
	notes string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET notes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, notes))
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus string,
	nextStatus string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus))
}

func (r *SessionRepository) HasConflict(
	ctx context.Context,
	therapistID int64,
	requestedTime time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE therapist_id = $1
			  AND status <> 'cancelled'
			  AND scheduled_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, therapistID, requestedTime, durationMinutes).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

func (r *SessionRepository) HasConflictExcludingSession(
	ctx context.Context,
	therapistID int64,
	requestedTime time.Time,
	durationMinutes int,
	excludedSessionID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE therapist_id = $1
			  AND id <> $4
			  AND status <> 'cancelled'
			  AND scheduled_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, therapistID, requestedTime, durationMinutes, excludedSessionID).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}
