package services

import (
	"time"

	"github.com/manusiele/TherapyFlow/internal/models"
)

// SessionsOnDay filters sessions to those whose scheduled time falls on the
// same calendar day as date, compared in date's location.
func SessionsOnDay(sessions []models.Session, date time.Time) []models.Session {
	matched := make([]models.Session, 0)
	for _, session := range sessions {
		if sameCalendarDay(session.ScheduledAt, date) {
			matched = append(matched, session)
		}
	}
	return matched
}

// WeekOf returns the 7 consecutive calendar days starting on the Sunday on or
// before anchor, at midnight in anchor's location.
func WeekOf(anchor time.Time) [7]time.Time {
	midnight := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	sunday := midnight.AddDate(0, 0, -int(midnight.Weekday()))

	var days [7]time.Time
	for i := range days {
		days[i] = sunday.AddDate(0, 0, i)
	}
	return days
}

type WeekDay struct {
	Date     time.Time        `json:"date"`
	Sessions []models.Session `json:"sessions"`
}

// GroupByWeek buckets sessions into the week containing anchor. Sessions
// outside the window are dropped; bucket order is Sunday through Saturday.
func GroupByWeek(sessions []models.Session, anchor time.Time) [7]WeekDay {
	days := WeekOf(anchor)

	var week [7]WeekDay
	for i, day := range days {
		week[i] = WeekDay{Date: day, Sessions: make([]models.Session, 0)}
	}

	for _, session := range sessions {
		for i, day := range days {
			if sameCalendarDay(session.ScheduledAt, day) {
				week[i].Sessions = append(week[i].Sessions, session)
				break
			}
		}
	}
	return week
}

func sameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
