package services

import (
	"strings"
	"testing"
)

func TestRoomNameForSessionIsDeterministic(t *testing.T) {
	first := RoomNameForSession(55, 7, 42, "2026-03-18")
	second := RoomNameForSession(55, 7, 42, "2026-03-18")
	if first != second {
		t.Fatalf("expected stable room name, got %q then %q", first, second)
	}

	other := RoomNameForSession(56, 7, 42, "2026-03-18")
	if first == other {
		t.Fatalf("expected distinct rooms for distinct sessions, both %q", first)
	}

	nextDay := RoomNameForSession(55, 7, 42, "2026-03-19")
	if first == nextDay {
		t.Fatalf("expected a fresh room per day, both %q", first)
	}
}

func TestRoomNameForSessionIsValid(t *testing.T) {
	name := RoomNameForSession(55, 7, 42, "2026-03-18")
	if !strings.HasPrefix(name, "tf-") {
		t.Fatalf("expected tf- prefix, got %q", name)
	}
	if len(name) > 32 {
		t.Fatalf("room name too long: %d chars", len(name))
	}
	if !ValidRoomName(name) {
		t.Fatalf("generated room name should validate: %q", name)
	}
}

func TestValidRoomName(t *testing.T) {
	cases := map[string]bool{
		"tf-abc123":       true,
		"weekly_check-in": true,
		"a":               false,
		"":                false,
		"has space":       false,
		"bad/slash":       false,
	}
	cases[strings.Repeat("x", 64)] = true
	cases[strings.Repeat("x", 65)] = false

	for name, want := range cases {
		if got := ValidRoomName(name); got != want {
			t.Fatalf("ValidRoomName(%q) = %v, want %v", name, got, want)
		}
	}
}
