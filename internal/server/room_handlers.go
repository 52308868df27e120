// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// OpenRoom handles POST /api/v1/users/:id/rooms
// Returns the existing two-party room when one already exists.
// @Summary Open a direct-message room with a user
// @Tags rooms
// @Produce json
// @Param id path int true "User ID"
// @Success 201 {object} models.Room
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id}/rooms [post]
func (s *Server) OpenRoom(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	room, err := s.roomService.OpenRoom(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetRooms handles GET /api/v1/rooms
// @Summary List own rooms, most recently active first
// @Tags rooms
// @Produce json
// @Success 200 {array} models.RoomSummary
// @Router /rooms [get]
func (s *Server) GetRooms(c *fiber.Ctx) error {
	rooms, err := s.roomService.ListRooms(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rooms)
}

// GetRoom handles GET /api/v1/rooms/:id
// @Summary Get a room with its full message history
// @Tags rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} models.RoomDetail
// @Failure 403 {object} models.ErrorResponse
// @Router /rooms/{id} [get]
func (s *Server) GetRoom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	room, err := s.roomService.GetRoom(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(room)
}

// SendMessage handles POST /api/v1/rooms/:id/messages
// @Summary Send a message in a room
// @Tags rooms
// @Accept json
// @Produce json
// @Param id path int true "Room ID"
// @Param request body object{content=string} true "Message content"
// @Success 201 {object} models.Message
// @Failure 403 {object} models.ErrorResponse
// @Router /rooms/{id}/messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.roomService.SendMessage(c.Context(), roomID, currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
