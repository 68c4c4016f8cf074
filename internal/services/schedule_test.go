package services

import (
	"testing"
	"time"

	"github.com/manusiele/TherapyFlow/internal/models"
)

func scheduledSession(id int64, at time.Time) models.Session {
	return models.Session{
		ID:              id,
		PatientID:       42,
		TherapistID:     7,
		SessionType:     "individual",
		ScheduledAt:     at,
		DurationMinutes: 50,
		Status:          models.SessionStatusConfirmed,
	}
}

func TestSessionsOnDayMatchesCalendarDate(t *testing.T) {
	day := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		scheduledSession(1, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)),
		scheduledSession(2, time.Date(2026, 3, 18, 23, 59, 59, 0, time.UTC)),
		scheduledSession(3, time.Date(2026, 3, 17, 23, 59, 59, 0, time.UTC)),
		scheduledSession(4, time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)),
	}

	matched := SessionsOnDay(sessions, day)
	if len(matched) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(matched))
	}
	if matched[0].ID != 1 || matched[1].ID != 2 {
		t.Fatalf("expected sessions 1 and 2, got %d and %d", matched[0].ID, matched[1].ID)
	}
}

func TestSessionsOnDayComparesInQueryLocation(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 22:00 UTC on the 18th is already the 19th in Nairobi (UTC+3).
	sessions := []models.Session{
		scheduledSession(1, time.Date(2026, 3, 18, 22, 0, 0, 0, time.UTC)),
	}

	day := time.Date(2026, 3, 19, 0, 0, 0, 0, nairobi)
	if got := SessionsOnDay(sessions, day); len(got) != 1 {
		t.Fatalf("expected session to land on the 19th in Nairobi, got %d matches", len(got))
	}

	day = time.Date(2026, 3, 18, 0, 0, 0, 0, nairobi)
	if got := SessionsOnDay(sessions, day); len(got) != 0 {
		t.Fatalf("expected no sessions on the 18th in Nairobi, got %d matches", len(got))
	}
}

func TestWeekOfStartsOnSunday(t *testing.T) {
	// 2026-03-18 is a Wednesday.
	anchor := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

	days := WeekOf(anchor)
	if days[0].Weekday() != time.Sunday {
		t.Fatalf("expected week to start on Sunday, got %s", days[0].Weekday())
	}
	if !days[0].Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week start 2026-03-15, got %s", days[0])
	}
	for i := 1; i < 7; i++ {
		if got := days[i].Sub(days[i-1]); got != 24*time.Hour {
			t.Fatalf("expected consecutive days, gap at %d was %s", i, got)
		}
	}
}

func TestWeekOfSundayAnchorIsItsOwnStart(t *testing.T) {
	anchor := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	days := WeekOf(anchor)
	if !days[0].Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Sunday anchor to start its own week, got %s", days[0])
	}
}

func TestGroupByWeekBucketsAndDrops(t *testing.T) {
	anchor := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		scheduledSession(1, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)),  // Sunday
		scheduledSession(2, time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)), // Wednesday
		scheduledSession(3, time.Date(2026, 3, 18, 14, 0, 0, 0, time.UTC)), // Wednesday
		scheduledSession(4, time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)),  // Saturday
		scheduledSession(5, time.Date(2026, 3, 22, 9, 0, 0, 0, time.UTC)),  // next Sunday, dropped
		scheduledSession(6, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)),  // prior Saturday, dropped
	}

	week := GroupByWeek(sessions, anchor)

	total := 0
	for _, day := range week {
		if day.Sessions == nil {
			t.Fatalf("expected empty slice for %s, got nil", day.Date)
		}
		total += len(day.Sessions)
	}
	if total != 4 {
		t.Fatalf("expected 4 sessions in the week, got %d", total)
	}

	if len(week[0].Sessions) != 1 || week[0].Sessions[0].ID != 1 {
		t.Fatalf("expected session 1 on Sunday, got %+v", week[0].Sessions)
	}
	if len(week[3].Sessions) != 2 {
		t.Fatalf("expected 2 sessions on Wednesday, got %d", len(week[3].Sessions))
	}
	if len(week[6].Sessions) != 1 || week[6].Sessions[0].ID != 4 {
		t.Fatalf("expected session 4 on Saturday, got %+v", week[6].Sessions)
	}
}
