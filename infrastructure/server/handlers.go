package server

import (
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/errors"
	"roomchat/projection"
	"roomchat/services"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const missingCursorMessage = "Missing ?before timestamp"

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	CreatedBy string `json:"createdBy" validate:"max=64"`
}

type CreateRoomResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
	Name    string `json:"name"`
	Link    string `json:"link"`
}

type RoomResponse struct {
	RoomID    string `json:"roomId"`
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

// recentMessages handles GET /api/messages?roomId&limit.
// A store failure answers an empty list.
func (s *Server) recentMessages(c *fiber.Ctx) error {
	roomID := domain.RoomID(strings.TrimSpace(c.Query("roomId")))
	messages, err := s.history.Recent(c.UserContext(), roomID, c.QueryInt("limit", 0))
	if err != nil {
		s.log.Warn("Recent messages unavailable", "room", roomID, "error", err)
	}
	return c.JSON(event.ToAPIMessages(messages))
}

// olderMessages handles GET /api/messages/older?roomId&before&limit.
func (s *Server) olderMessages(c *fiber.Ctx) error {
	cursor, err := services.ParseCursor(c.Query("before"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: missingCursorMessage})
	}
	roomID := domain.RoomID(strings.TrimSpace(c.Query("roomId")))
	messages, err := s.history.Before(c.UserContext(), roomID, &cursor, c.QueryInt("limit", 0))
	if err != nil {
		s.log.Warn("Older messages unavailable", "room", roomID, "before", cursor, "error", err)
	}
	return c.JSON(event.ToAPIMessages(messages))
}

// createRoom handles POST /api/rooms/create.
func (s *Server) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.CreatedBy = strings.TrimSpace(req.CreatedBy)
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Room name is required"})
	}

	room, err := s.directory.Create(c.UserContext(), req.Name, req.CreatedBy)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrEmptyRoomName):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Room name is required"})
	default:
		s.log.Error("Room creation failed", "name", req.Name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to create room"})
	}
	return c.JSON(CreateRoomResponse{
		Success: true,
		RoomID:  room.ID.String(),
		Name:    room.Name,
		Link:    s.directory.InviteLink(room.ID),
	})
}

// getRoom handles GET /api/rooms/:roomId. Unknown rooms still get a
// descriptor so invite links never dead-end.
func (s *Server) getRoom(c *fiber.Ctx) error {
	roomID := domain.RoomID(c.Params("roomId"))
	result := s.directory.Lookup(c.UserContext(), roomID)
	room := result.Room
	if result.Status != domain.RoomFound {
		room = domain.FallbackRoom(roomID, time.Now())
	}
	return c.JSON(RoomResponse{
		RoomID:    room.ID.String(),
		Name:      room.Name,
		CreatedBy: room.CreatedBy,
		CreatedAt: event.FormatTime(room.CreatedAt),
	})
}

// health handles GET /health.
func (s *Server) health(c *fiber.Ctx) error {
	res := fiber.Map{"status": "ok"}
	for key, value := range s.orchestrator.Stats() {
		res[key] = value
	}
	if s.monitor != nil {
		res["process"] = s.monitor.Latest()
	}
	if s.activity != nil {
		res["activity"] = lo.MapKeys(s.activity.Snapshot(), func(_ projection.RoomStats, roomID domain.RoomID) string {
			return roomID.String()
		})
	}
	return c.JSON(res)
}
