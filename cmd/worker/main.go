package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/manusiele/TherapyFlow/internal/config"
	"github.com/manusiele/TherapyFlow/internal/database"
	"github.com/manusiele/TherapyFlow/internal/events"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/repository"
	"github.com/manusiele/TherapyFlow/internal/services"
)

// worker consumes session lifecycle events and delivers email/SMS to both
// participants. Delivery failures are logged and dropped, never retried.
type worker struct {
	userRepo           *repository.UserRepository
	patientProfileRepo *repository.PatientProfileRepository
	email              services.EmailSender
	sms                services.SMSSender
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.NatsURL == "" {
		log.Fatal("NATS_URL environment variable is required")
	}
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	var email services.EmailSender = services.LogEmailService{}
	if cfg.SendGridAPIKey != "" && cfg.EmailFrom != "" {
		email = services.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom)
	} else {
		log.Println("SendGrid credentials not found. Emails will be logged only.")
	}

	var sms services.SMSSender = services.LogSMSService{}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		sms = services.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	} else {
		log.Println("Twilio credentials not found. SMS will be logged only.")
	}

	w := &worker{
		userRepo:           repository.NewUserRepository(database.DB),
		patientProfileRepo: repository.NewPatientProfileRepository(database.DB),
		email:              email,
		sms:                sms,
	}

	nc, err := nats.Connect(cfg.NatsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Drain()

	if _, err := nc.Subscribe(events.SubjectSessionBooked, w.handleSessionBooked); err != nil {
		log.Fatalf("Failed to subscribe to %s: %v", events.SubjectSessionBooked, err)
	}
	if _, err := nc.Subscribe(events.SubjectSessionStatusChanged, w.handleStatusChanged); err != nil {
		log.Fatalf("Failed to subscribe to %s: %v", events.SubjectSessionStatusChanged, err)
	}

	log.Println("Notification worker started, waiting for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down notification worker...")
}

func (w *worker) handleSessionBooked(msg *nats.Msg) {
	event, ok := decodeEvent(msg)
	if !ok {
		return
	}

	when := event.ScheduledAt.Format("Mon, Jan 2 at 3:04 PM")
	subject := "Session request received"
	body := fmt.Sprintf("A %s session was requested for %s. It is awaiting therapist confirmation.",
		event.SessionType, when)

	w.notifyParticipants(event, subject, body)
}

func (w *worker) handleStatusChanged(msg *nats.Msg) {
	event, ok := decodeEvent(msg)
	if !ok {
		return
	}

	when := event.ScheduledAt.Format("Mon, Jan 2 at 3:04 PM")
	var subject, body string
	switch event.Status {
	case models.SessionStatusConfirmed:
		subject = "Session confirmed"
		body = fmt.Sprintf("Your %s session on %s is confirmed.", event.SessionType, when)
	case models.SessionStatusCancelled:
		subject = "Session cancelled"
		body = fmt.Sprintf("The %s session scheduled for %s was cancelled.", event.SessionType, when)
	default:
		return
	}

	w.notifyParticipants(event, subject, body)
}

func (w *worker) notifyParticipants(event events.SessionEvent, subject, body string) {
	ctx := context.Background()

	for _, userID := range []int64{event.PatientID, event.TherapistID} {
		user, err := w.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("Failed to load user %d for session %d: %v", userID, event.SessionID, err)
			continue
		}

		html := fmt.Sprintf("<p>%s</p>", body)
		if err := w.email.SendEmail(ctx, user.Email, subject, html, body); err != nil {
			log.Printf("Failed to email user %d for session %d: %v", userID, event.SessionID, err)
		}
	}

	// SMS reaches the patient only; therapists follow up from the portal.
	profile, err := w.patientProfileRepo.GetByUserID(ctx, event.PatientID)
	if err != nil {
		log.Printf("Failed to load patient profile %d for session %d: %v", event.PatientID, event.SessionID, err)
		return
	}
	if profile.Phone == nil || *profile.Phone == "" {
		return
	}
	if err := w.sms.SendSMS(ctx, *profile.Phone, fmt.Sprintf("%s: %s", subject, body)); err != nil {
		log.Printf("Failed to text patient %d for session %d: %v", event.PatientID, event.SessionID, err)
	}
}

func decodeEvent(msg *nats.Msg) (events.SessionEvent, bool) {
	var event events.SessionEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("Error unmarshalling event: %v", err)
		return events.SessionEvent{}, false
	}
	return event, true
}
