package middleware

import (
	"time"

	"wikiquiz/internal/util"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName = "quiz_session_id"

	// SessionLocalsKey is where the resolved session id is stored on the
	// request context.
	SessionLocalsKey = "session_id"

	sessionCookieTTL = 30 * 24 * time.Hour
)

// Session resolves the caller's session token, minting a fresh one on
// first contact. The token is the sole scope for attempt history; there is
// no authentication behind it.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if sessionID == "" {
			sessionID = util.NewULID()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Expires:  time.Now().Add(sessionCookieTTL),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Path:     "/",
			})
		}
		c.Locals(SessionLocalsKey, sessionID)
		return c.Next()
	}
}

// SessionID returns the session token resolved by the Session middleware.
func SessionID(c *fiber.Ctx) string {
	if v, ok := c.Locals(SessionLocalsKey).(string); ok {
		return v
	}
	return ""
}
