package models

import "time"

const (
	SessionStatusPending   = "pending"
	SessionStatusConfirmed = "confirmed"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// SessionTypes is the set of appointment kinds the portal offers.
var SessionTypes = []string{
	"individual",
	"couples",
	"family",
	"group",
	"consultation",
	"follow_up",
}

// SessionDurations lists the bookable durations in minutes.
var SessionDurations = []int{30, 45, 50, 60, 90, 120}

type Session struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient_id"`
	TherapistID     int64     `json:"therapist_id"`
	SessionType     string    `json:"session_type"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PatientRosterEntry is one row of a therapist's caseload, aggregated from
// that therapist's non-cancelled sessions.
type PatientRosterEntry struct {
	PatientID      int64      `json:"patient_id"`
	Email          string     `json:"email"`
	FullName       *string    `json:"full_name"`
	SessionCount   int        `json:"session_count"`
	CompletedCount int        `json:"completed_count"`
	LastSessionAt  *time.Time `json:"last_session_at"`
	NextSessionAt  *time.Time `json:"next_session_at"`
}

// EndsAt is the end of the occupied interval.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

func ValidSessionType(sessionType string) bool {
	for _, t := range SessionTypes {
		if t == sessionType {
			return true
		}
	}
	return false
}

func ValidSessionDuration(minutes int) bool {
	for _, d := range SessionDurations {
		if d == minutes {
			return true
		}
	}
	return false
}
