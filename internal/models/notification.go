package models

import "time"

const (
	NotificationSessionBooked    = "session_booked"
	NotificationSessionConfirmed = "session_confirmed"
	NotificationSessionCancelled = "session_cancelled"
	NotificationSessionReminder  = "session_reminder"
	NotificationNewMessage       = "new_message"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	SessionID *int64    `json:"session_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
