// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignUp handles POST /api/v1/auth
// @Summary User registration
// @Description Register a new account and open a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string,password_confirmation=string} true "Registration request"
// @Success 201 {object} object{data=models.User}
// @Failure 422 {object} models.ErrorResponse
// @Router /auth [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	var req struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.tokenService.Issue(c.Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	s.setSessionHeaders(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": user,
	})
}

// SignIn handles POST /api/v1/auth/sign_in
// @Summary User sign-in
// @Description Verify credentials and issue a fresh session triple
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Sign-in request"
// @Success 200 {object} object{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/sign_in [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.tokenService.Issue(c.Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	s.setSessionHeaders(c, token)

	return c.JSON(fiber.Map{
		"data": user,
	})
}

// SignOut handles DELETE /api/v1/auth/sign_out
// @Summary Sign out
// @Description Revoke the presented session
// @Tags auth
// @Produce json
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/sign_out [delete]
func (s *Server) SignOut(c *fiber.Ctx) error {
	userID := currentUserID(c)
	client := c.Get(HeaderClient)

	if err := s.tokenService.Revoke(c.Context(), userID, client); err != nil {
		return respondError(c, err)
	}

	// Tell AuthRequired not to rotate: the session no longer exists.
	c.Locals("sessionRevoked", true)

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// SessionsProbe handles GET /api/v1/auth/sessions
// @Summary Login probe
// @Description Report whether the presented session is valid; never an error status
// @Tags auth
// @Produce json
// @Success 200 {object} object{is_login=bool}
// @Router /auth/sessions [get]
func (s *Server) SessionsProbe(c *fiber.Ctx) error {
	token := c.Get(HeaderAccessToken)
	client := c.Get(HeaderClient)
	uid := c.Get(HeaderUID)

	userID, err := s.tokenService.Validate(c.Context(), token, client, uid)
	if err != nil {
		return c.JSON(fiber.Map{
			"is_login": false,
			"message":  "No valid session",
		})
	}

	user, err := s.userService.GetUserWithSocial(c.Context(), userID)
	if err != nil {
		return c.JSON(fiber.Map{
			"is_login": false,
			"message":  "No valid session",
		})
	}

	if rotated, rotErr := s.tokenService.Rotate(c.Context(), userID, uid, client, token); rotErr == nil {
		s.setSessionHeaders(c, rotated)
	}

	return c.JSON(fiber.Map{
		"is_login": true,
		"data":     user,
	})
}
