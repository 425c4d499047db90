package middleware

import (
	"context"
	"strings"

	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "reelhub_session"

// SessionResolver looks up the session behind a token. A nil session means anonymous.
type SessionResolver interface {
	GetCurrentSession(ctx context.Context, token string) (*models.Session, error)
}

// SessionToken extracts the session token from the cookie, bearer header, or
// the "token" query parameter used by websocket clients.
func SessionToken(c *fiber.Ctx) string {
	if tok := c.Cookies(SessionCookie); tok != "" {
		return tok
	}
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

func resolve(c *fiber.Ctx, sessions SessionResolver) (*models.Session, error) {
	token := SessionToken(c)
	if token == "" {
		return nil, nil
	}
	sess, err := sessions.GetCurrentSession(c.UserContext(), token)
	if err != nil || sess == nil {
		return nil, err
	}
	c.Locals("userID", sess.AccountID)
	c.Locals("sessionToken", token)
	c.SetUserContext(WithUserID(c.UserContext(), sess.AccountID))
	return sess, nil
}

// OptionalSession attaches the viewer's account id when a valid session is present.
func OptionalSession(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := resolve(c, sessions); err != nil {
			Logger.WarnContext(c.UserContext(), "session lookup failed", "error", err.Error())
		}
		return c.Next()
	}
}

// SessionRequired rejects requests without a live session.
func SessionRequired(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := resolve(c, sessions)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		if sess == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("login required"))
		}
		return c.Next()
	}
}

// ViewerID returns the authenticated account id, or "" for anonymous requests.
func ViewerID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}
