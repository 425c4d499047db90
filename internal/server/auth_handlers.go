package server

import (
	"encoding/json"
	"time"

	"reelhub/internal/middleware"
	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles GET /auth/login by redirecting to the identity provider.
func (s *Server) Login(c *fiber.Ctx) error {
	target, err := s.rt.Auth.BeginLogin(c.UserContext(), c.Hostname())
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "login start failed", "error", err.Error())
		return c.Redirect("/auth/failure", fiber.StatusFound)
	}
	return c.Redirect(target, fiber.StatusFound)
}

// AuthCallback handles GET /auth-callback. Success sets the session cookie and
// goes home; any failure goes to /auth/failure.
func (s *Server) AuthCallback(c *fiber.Ctx) error {
	result, err := s.rt.Auth.CompleteLoginCallback(c.UserContext(), c.Query("code"), c.Query("state"))
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "login callback failed", "error", err.Error())
		return c.Redirect("/auth/failure", fiber.StatusFound)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

// AuthFailure handles GET /auth/failure
func (s *Server) AuthFailure(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized,
		models.NewAuthError("login failed", nil))
}

// GetSession handles GET /api/session. Anonymous callers get null.
func (s *Server) GetSession(c *fiber.Ctx) error {
	user, err := s.rt.Auth.CurrentUser(c.UserContext(), middleware.SessionToken(c))
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return c.JSON(nil)
	}
	s.rt.Media.Profile(user.Profile)
	return c.JSON(user)
}

// Logout handles POST /api/session/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.rt.Auth.EndSession(c.UserContext(), middleware.SessionToken(c)); err != nil {
		return respondError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"status": "logged out"})
}

// LogClientEvent handles POST /api/log. Any JSON payload is written to the log as-is.
func (s *Server) LogClientEvent(c *fiber.Ctx) error {
	var payload any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid JSON payload"))
	}
	middleware.Logger.InfoContext(c.UserContext(), "client log", "payload", payload)
	return c.JSON(fiber.Map{"status": "logged"})
}
