// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/v1/users/:id/relationships
// @Summary Follow a user
// @Tags relationships
// @Produce json
// @Param id path int true "User ID to follow"
// @Success 201 {object} models.Relationship
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id}/relationships [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	rel, err := s.relService.Follow(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rel)
}

// Unfollow handles DELETE /api/v1/relationships/:id
// The :id is the relationship row id, unlike the like route.
// @Summary Remove own follow edge
// @Tags relationships
// @Produce json
// @Param id path int true "Relationship ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /relationships/{id} [delete]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.relService.Unfollow(c.Context(), id, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// GetRelationships handles GET /api/v1/relationships
// @Summary Get own followings and followers
// @Tags relationships
// @Produce json
// @Success 200 {object} service.SocialGraph
// @Router /relationships [get]
func (s *Server) GetRelationships(c *fiber.Ctx) error {
	graph, err := s.relService.GetSocialGraph(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(graph)
}
