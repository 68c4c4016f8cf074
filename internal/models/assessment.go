package models

import "time"

const (
	InstrumentPHQ9 = "phq9"
	InstrumentGAD7 = "gad7"
)

type Assessment struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	Instrument string    `json:"instrument"`
	Responses  []int     `json:"responses"`
	Score      int       `json:"score"`
	Severity   string    `json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
}
