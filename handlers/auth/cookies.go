package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// RefreshCookieName is the cookie carrying the opaque refresh secret.
	RefreshCookieName = "refreshToken"
	// refreshCookiePath limits the cookie to the auth endpoints.
	refreshCookiePath = "/api/auth"
)

// setRefreshCookie stores the refresh secret as an HttpOnly, Secure,
// SameSite=None cookie scoped to the auth path. Max-age matches the refresh
// policy window.
func setRefreshCookie(c *fiber.Ctx, secret string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    secret,
		Path:     refreshCookiePath,
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// clearRefreshCookie expires the refresh cookie immediately.
func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
