package services

import (
	"context"
	"fmt"
	"log"

	"github.com/manusiele/TherapyFlow/internal/events"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/repository"
)

type notificationStore interface {
	Create(ctx context.Context, input repository.CreateNotificationInput) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int64, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// NotificationService records in-app notifications and forwards lifecycle
// events to the bus for out-of-band delivery (email/SMS by cmd/worker).
type NotificationService struct {
	notificationRepo notificationStore
	publisher        events.Publisher
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	publisher events.Publisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

func (s *NotificationService) ListNotifications(
	ctx context.Context,
	userID int64,
	unreadOnly bool,
) ([]models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(
	ctx context.Context,
	userID int64,
	notificationID int64,
) error {
	if notificationID <= 0 {
		return ErrInvalidInput
	}
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// SessionBooked implements sessionObserver.
func (s *NotificationService) SessionBooked(ctx context.Context, session *models.Session) {
	when := session.ScheduledAt.Format("Mon, Jan 2 at 3:04 PM")

	s.record(ctx, repository.CreateNotificationInput{
		UserID:    session.TherapistID,
		Kind:      models.NotificationSessionBooked,
		Title:     "New session request",
		Body:      fmt.Sprintf("A %s session was requested for %s.", session.SessionType, when),
		SessionID: &session.ID,
	})
	s.record(ctx, repository.CreateNotificationInput{
		UserID:    session.PatientID,
		Kind:      models.NotificationSessionBooked,
		Title:     "Session requested",
		Body:      fmt.Sprintf("Your %s session for %s is awaiting confirmation.", session.SessionType, when),
		SessionID: &session.ID,
	})

	s.publish(events.SubjectSessionBooked, session, "")
}

// SessionStatusChanged implements sessionObserver.
func (s *NotificationService) SessionStatusChanged(
	ctx context.Context,
	session *models.Session,
	previousStatus string,
) {
	kind, title, body := statusChangeContent(session)
	if kind == "" {
		return
	}

	for _, userID := range []int64{session.PatientID, session.TherapistID} {
		s.record(ctx, repository.CreateNotificationInput{
			UserID:    userID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			SessionID: &session.ID,
		})
	}

	s.publish(events.SubjectSessionStatusChanged, session, previousStatus)
}

func statusChangeContent(session *models.Session) (kind, title, body string) {
	when := session.ScheduledAt.Format("Mon, Jan 2 at 3:04 PM")
	switch session.Status {
	case models.SessionStatusConfirmed:
		return models.NotificationSessionConfirmed,
			"Session confirmed",
			fmt.Sprintf("Your %s session on %s is confirmed.", session.SessionType, when)
	case models.SessionStatusCancelled:
		return models.NotificationSessionCancelled,
			"Session cancelled",
			fmt.Sprintf("The %s session scheduled for %s was cancelled.", session.SessionType, when)
	default:
		return "", "", ""
	}
}

func (s *NotificationService) record(ctx context.Context, input repository.CreateNotificationInput) {
	if _, err := s.notificationRepo.Create(ctx, input); err != nil {
		log.Printf("record notification for user %d: %v", input.UserID, err)
	}
}

func (s *NotificationService) publish(subject string, session *models.Session, previousStatus string) {
	err := s.publisher.Publish(subject, events.SessionEvent{
		SessionID:      session.ID,
		PatientID:      session.PatientID,
		TherapistID:    session.TherapistID,
		SessionType:    session.SessionType,
		ScheduledAt:    session.ScheduledAt,
		Status:         session.Status,
		PreviousStatus: previousStatus,
	})
	if err != nil {
		log.Printf("publish %s for session %d: %v", subject, session.ID, err)
	}
}
