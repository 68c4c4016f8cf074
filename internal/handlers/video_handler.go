package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/manusiele/TherapyFlow/internal/models"
	"github.com/manusiele/TherapyFlow/internal/services"
)

type sessionReader interface {
	GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.Session, error)
}

// VideoHandler provisions and tears down call rooms for confirmed sessions.
type VideoHandler struct {
	sessions sessionReader
	video    services.VideoService
}

func NewVideoHandler(sessions sessionReader, video services.VideoService) *VideoHandler {
	return &VideoHandler{sessions: sessions, video: video}
}

func (h *VideoHandler) CreateRoom(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != models.RolePatient && role != models.RoleTherapist) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if h.video == nil {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"error": "Video calls are not configured"})
	}

	session, err := h.sessions.GetSession(c.Context(), actorID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}
	if session.Status != models.SessionStatusConfirmed {
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "Only confirmed sessions can start a call"})
	}

	roomName := services.RoomNameForSession(
		session.ID,
		session.TherapistID,
		session.PatientID,
		session.ScheduledAt.Format("2006-01-02"),
	)

	room, err := h.video.CreateRoom(c.Context(), roomName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create call room"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"room": room})
}

func (h *VideoHandler) DeleteRoom(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleTherapist {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if h.video == nil {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"error": "Video calls are not configured"})
	}

	session, err := h.sessions.GetSession(c.Context(), actorID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	roomName := services.RoomNameForSession(
		session.ID,
		session.TherapistID,
		session.PatientID,
		session.ScheduledAt.Format("2006-01-02"),
	)

	if err := h.video.DeleteRoom(c.Context(), roomName); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to delete call room"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
