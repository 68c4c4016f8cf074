package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectSessionBooked        = "therapyflow.session.booked"
	SubjectSessionStatusChanged = "therapyflow.session.status_changed"
)

type SessionEvent struct {
	SessionID      int64     `json:"session_id"`
	PatientID      int64     `json:"patient_id"`
	TherapistID    int64     `json:"therapist_id"`
	SessionType    string    `json:"session_type"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
}

// Publisher fans lifecycle events out to interested consumers. The worker
// process subscribes on the other side.
type Publisher interface {
	Publish(subject string, event SessionEvent) error
	Close()
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(subject string, event SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, payload)
}

func (p *NatsPublisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}

// NoopPublisher is used when NATS_URL is unset; events are logged and dropped.
type NoopPublisher struct{}

func (NoopPublisher) Publish(subject string, event SessionEvent) error {
	log.Printf("event %s (session %d) dropped: no event bus configured", subject, event.SessionID)
	return nil
}

func (NoopPublisher) Close() {}
