package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var roomNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type VideoRoom struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// VideoService provisions call rooms for confirmed sessions.
type VideoService interface {
	CreateRoom(ctx context.Context, roomName string) (*VideoRoom, error)
	DeleteRoom(ctx context.Context, roomName string) error
}

// RoomNameForSession derives a deterministic room name from the session
// identity so both participants land in the same room. The uuid namespace
// keeps names unguessable across deployments.
var roomNamespace = uuid.MustParse("7e5c1b9a-4f7d-4f23-9c68-2b1a9d3c5e70")

func RoomNameForSession(sessionID int64, therapistID int64, patientID int64, day string) string {
	seed := fmt.Sprintf("%d:%d:%d:%s", sessionID, therapistID, patientID, day)
	name := "tf-" + strings.ReplaceAll(uuid.NewSHA1(roomNamespace, []byte(seed)).String(), "-", "")
	if len(name) > 32 {
		name = name[:32]
	}
	return name
}

func ValidRoomName(roomName string) bool {
	return len(roomName) >= 2 && len(roomName) <= 64 && roomNamePattern.MatchString(roomName)
}

type DailyVideoService struct {
	apiKey     string
	domain     string
	httpClient *http.Client
}

func NewDailyVideoService(apiKey, domain string) *DailyVideoService {
	return &DailyVideoService{
		apiKey:     apiKey,
		domain:     strings.TrimSuffix(domain, "/"),
		httpClient: http.DefaultClient,
	}
}

type dailyRoomRequest struct {
	Name       string         `json:"name"`
	Privacy    string         `json:"privacy"`
	Properties map[string]any `json:"properties,omitempty"`
}

type dailyRoomResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *DailyVideoService) CreateRoom(ctx context.Context, roomName string) (*VideoRoom, error) {
	if !ValidRoomName(roomName) {
		return nil, ErrInvalidInput
	}

	body, err := json.Marshal(dailyRoomRequest{
		Name:    roomName,
		Privacy: "private",
		Properties: map[string]any{
			"enable_chat":           true,
			"enable_screenshare":    true,
			"eject_at_room_exp":     true,
			"max_participants":      8,
			"enable_prejoin_ui":     true,
			"enable_knocking":       true,
			"start_video_off":       false,
			"start_audio_off":       false,
			"exp_minutes_after_use": 180,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode room request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		"https://api.daily.co/v1/rooms",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build room request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("create room: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var room dailyRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, fmt.Errorf("decode room response: %w", err)
	}

	return &VideoRoom{Name: room.Name, URL: room.URL}, nil
}

func (s *DailyVideoService) DeleteRoom(ctx context.Context, roomName string) error {
	if !ValidRoomName(roomName) {
		return ErrInvalidInput
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		"https://api.daily.co/v1/rooms/"+roomName,
		nil,
	)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	defer resp.Body.Close()

	// A missing room is fine: the call simply ended earlier.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("delete room: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}
