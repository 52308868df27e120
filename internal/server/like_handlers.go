// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/v1/posts/:id/likes
// @Summary Like a post
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} models.Like
// @Failure 422 {object} models.ErrorResponse
// @Router /posts/{id}/likes [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	like, err := s.likeService.LikePost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(like)
}

// UnlikePost handles DELETE /api/v1/likes/:id
// The :id is the POST id; the like row is found by (post, acting user).
// @Summary Remove own like from a post
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/{id} [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.likeService.UnlikePost(c.Context(), postID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}
