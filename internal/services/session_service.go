package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/repository"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrTherapistNotFound      = errors.New("therapist not found")
	ErrPatientNotFound        = errors.New("patient not found")
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type sessionStore interface {
	GetByID(ctx context.Context, sessionID int64) (*models.Session, error)
	List(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
	ListByTherapist(ctx context.Context, therapistID int64) ([]models.Session, error)
	PatientRoster(ctx context.Context, therapistID int64) ([]models.PatientRosterEntry, error)
	Update(ctx context.Context, sessionID int64, input repository.UpdateSessionInput) (*models.Session, error)
	SetNotes(ctx context.Context, sessionID int64, notes string) (*models.Session, error)
	UpdateStatusIfCurrent(ctx context.Context, sessionID int64, currentStatus, nextStatus string) (*models.Session, error)
	HasConflictExcludingSession(ctx context.Context, therapistID int64, requestedTime time.Time, durationMinutes int, excludedSessionID int64) (bool, error)
}

// sessionObserver is notified after a lifecycle change commits. Delivery is
// best-effort: observer failures never fail the operation.
type sessionObserver interface {
	SessionBooked(ctx context.Context, session *models.Session)
	SessionStatusChanged(ctx context.Context, session *models.Session, previousStatus string)
}

type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo sessionStore
	userRepo    userReader
	observer    sessionObserver
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	userRepo userReader,
	observer sessionObserver,
) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		observer:    observer,
	}
}

type BookSessionInput struct {
	PatientID       int64
	TherapistID     int64
	SessionType     string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
	Notes           *string
}

// BookSession creates a session between a patient and a therapist. A patient
// booking always starts pending; a therapist may create it confirmed directly.
func (s *SessionService) BookSession(
	ctx context.Context,
	actorID int64,
	role string,
	input BookSessionInput,
) (*models.Session, error) {
	if input.PatientID <= 0 || input.TherapistID <= 0 {
		return nil, ErrInvalidInput
	}
	if input.PatientID == input.TherapistID {
		return nil, ErrInvalidInput
	}
	if !models.ValidSessionType(input.SessionType) {
		return nil, ErrInvalidInput
	}
	if !models.ValidSessionDuration(input.DurationMinutes) {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}

	initialStatus := models.SessionStatusPending
	switch role {
	case models.RolePatient:
		if input.PatientID != actorID {
			return nil, ErrForbidden
		}
	case models.RoleTherapist:
		if input.TherapistID != actorID {
			return nil, ErrForbidden
		}
		if input.Status == models.SessionStatusConfirmed {
			initialStatus = models.SessionStatusConfirmed
		} else if input.Status != "" && input.Status != models.SessionStatusPending {
			return nil, ErrInvalidStatus
		}
	default:
		return nil, ErrForbidden
	}

	therapist, err := s.userRepo.GetByID(ctx, input.TherapistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTherapistNotFound
		}
		return nil, err
	}
	if therapist.Role != models.RoleTherapist {
		return nil, ErrInvalidInput
	}

	patient, err := s.userRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if patient.Role != models.RolePatient {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	// One booking at a time per therapist calendar.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TherapistID); err != nil {
		return nil, err
	}

	hasConflict, err := txSessionRepo.HasConflict(
		ctx,
		input.TherapistID,
		input.ScheduledAt.UTC(),
		input.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		PatientID:       input.PatientID,
		TherapistID:     input.TherapistID,
		SessionType:     input.SessionType,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Status:          initialStatus,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.SessionBooked(ctx, session)
	}

	return session, nil
}

func (s *SessionService) CheckAvailability(
	ctx context.Context,
	therapistID int64,
	requestedTime time.Time,
	durationMins int,
) (bool, error) {
	hasConflict, err := s.sessionRepo.HasConflictExcludingSession(
		ctx,
		therapistID,
		requestedTime.UTC(),
		durationMins,
		0,
	)
	if err != nil {
		return false, err
	}
	return !hasConflict, nil
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.SessionListFilter,
) ([]models.Session, error) {
	if role != models.RolePatient && role != models.RoleTherapist {
		return nil, ErrForbidden
	}
	return s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
}

func (s *SessionService) ListByTherapist(
	ctx context.Context,
	therapistID int64,
) ([]models.Session, error) {
	return s.sessionRepo.ListByTherapist(ctx, therapistID)
}

// PatientRoster is the caseload view a therapist sees: every patient they
// have a non-cancelled session with, plus simple per-patient counts.
func (s *SessionService) PatientRoster(
	ctx context.Context,
	therapistID int64,
) ([]models.PatientRosterEntry, error) {
	return s.sessionRepo.PatientRoster(ctx, therapistID)
}

func (s *SessionService) GetSession(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	return session, nil
}

type UpdateSessionInput struct {
	SessionType     *string
	ScheduledAt     *time.Time
	DurationMinutes *int
	Notes           *string
}

// UpdateSession edits the mutable fields of a session the therapist owns.
// Moving the occupied interval re-runs conflict detection.
func (s *SessionService) UpdateSession(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
	input UpdateSessionInput,
) (*models.Session, error) {
	if role != models.RoleTherapist {
		return nil, ErrForbidden
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TherapistID != actorID {
		return nil, ErrForbidden
	}
	if session.IsTerminal() {
		return nil, ErrInvalidStateTransition
	}

	if input.SessionType != nil && !models.ValidSessionType(*input.SessionType) {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes != nil && !models.ValidSessionDuration(*input.DurationMinutes) {
		return nil, ErrInvalidInput
	}

	if input.ScheduledAt != nil || input.DurationMinutes != nil {
		scheduledAt := session.ScheduledAt
		if input.ScheduledAt != nil {
			scheduledAt = input.ScheduledAt.UTC()
		}
		duration := session.DurationMinutes
		if input.DurationMinutes != nil {
			duration = *input.DurationMinutes
		}

		hasConflict, err := s.sessionRepo.HasConflictExcludingSession(
			ctx,
			session.TherapistID,
			scheduledAt,
			duration,
			session.ID,
		)
		if err != nil {
			return nil, err
		}
		if hasConflict {
			return nil, ErrConflict
		}
	}

	return s.sessionRepo.Update(ctx, sessionID, repository.UpdateSessionInput{
		SessionType:     input.SessionType,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
	})
}

// SetNotes attaches the therapist's notes without touching status. Marking the
// session completed is a separate, explicit status update.
func (s *SessionService) SetNotes(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
	notes string,
) (*models.Session, error) {
	if role != models.RoleTherapist {
		return nil, ErrForbidden
	}
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TherapistID != actorID {
		return nil, ErrForbidden
	}

	return s.sessionRepo.SetNotes(ctx, sessionID, trimmed)
}

func (s *SessionService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
	requestedStatus string,
) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	// Cancelling an already cancelled session is a no-op, not an error.
	if nextStatus == models.SessionStatusCancelled && session.Status == models.SessionStatusCancelled {
		return session, nil
	}

	if err := validateStatusTransition(role, actorID, session, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(ctx, sessionID, session.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if s.observer != nil {
		s.observer.SessionStatusChanged(ctx, updated, session.Status)
	}

	return updated, nil
}

// CancelSession is the soft-cancel entry point used by both roles.
func (s *SessionService) CancelSession(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
) (*models.Session, error) {
	return s.UpdateStatus(ctx, actorID, role, sessionID, models.SessionStatusCancelled)
}

func canAccessSession(role string, actorID int64, session *models.Session) bool {
	if role == models.RolePatient {
		return session.PatientID == actorID
	}
	if role == models.RoleTherapist {
		return session.TherapistID == actorID
	}
	return false
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "confirm", "confirmed":
		return models.SessionStatusConfirmed, nil
	case "complete", "completed":
		return models.SessionStatusCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.SessionStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateStatusTransition(
	role string,
	actorID int64,
	session *models.Session,
	nextStatus string,
) error {
	switch role {
	case models.RolePatient:
		if session.PatientID != actorID || nextStatus != models.SessionStatusCancelled {
			return ErrForbidden
		}
		if session.IsTerminal() {
			return ErrInvalidStateTransition
		}
		return nil
	case models.RoleTherapist:
		if session.TherapistID != actorID {
			return ErrForbidden
		}
		switch nextStatus {
		case models.SessionStatusConfirmed:
			if session.Status != models.SessionStatusPending {
				return ErrInvalidStateTransition
			}
		case models.SessionStatusCompleted:
			if session.Status != models.SessionStatusConfirmed {
				return ErrInvalidStateTransition
			}
		case models.SessionStatusCancelled:
			if session.IsTerminal() {
				return ErrInvalidStateTransition
			}
		default:
			return ErrInvalidStatus
		}
		return nil
	default:
		return ErrForbidden
	}
}
