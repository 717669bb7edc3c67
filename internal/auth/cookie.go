package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the single cookie carrying the signed session token.
const SessionCookieName = "ticketdesk_session"

// CookieWriter issues and clears the session cookie on a request context.
type CookieWriter struct {
	secure bool
}

// NewCookieWriter builds the writer. secure should only be disabled for
// local development over plain HTTP.
func NewCookieWriter(secure bool) *CookieWriter {
	return &CookieWriter{secure: secure}
}

// Set writes the session cookie with an expiry matching the token.
func (w *CookieWriter) Set(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear removes the session cookie from the client.
func (w *CookieWriter) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Read returns the raw session token from the request, empty when absent.
func Read(c *fiber.Ctx) string {
	return c.Cookies(SessionCookieName)
}
