package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/cocalhq/cocal-api/utils/device"
	"github.com/cocalhq/cocal-api/utils/middleware"
	"github.com/cocalhq/cocal-api/utils/response"
)

// Logout ends the session on the current device: the presented access token
// is blacklisted for its remaining lifetime and the device's refresh record
// is revoked. Calling it twice is not an error.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	deviceInfo := device.Fingerprint(c.Get(fiber.HeaderUserAgent))

	if err := h.sessions.LogoutDevice(c.Context(), principal.UserID, deviceInfo,
		principal.TokenID, principal.ExpiresAt); err != nil {
		response.LogError(c, "Logout", err)
		return response.InternalServerError(c, "Failed to log out")
	}

	clearRefreshCookie(c)

	return response.Success(c, fiber.Map{"message": "Logged out."})
}

// LogoutAll revokes every refresh session the user has, on every device.
// In-flight access tokens on other devices stay valid until their own
// expiry; only their ability to reissue is cut.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	count, err := h.sessions.LogoutAll(c.Context(), principal.UserID)
	if err != nil {
		response.LogError(c, "Logout all", err)
		return response.InternalServerError(c, "Failed to log out")
	}

	message := "Already logged out on all devices."
	if count > 0 {
		message = fmt.Sprintf("Logged out of %d sessions.", count)
	}

	return response.Success(c, fiber.Map{"message": message})
}
