package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cocalhq/cocal-api/services"
	"github.com/cocalhq/cocal-api/utils/response"
)

// Reissue exchanges the refresh cookie for a new access token. The cookie is
// left untouched: the same secret remains valid for later reissues.
func (h *AuthHandler) Reissue(c *fiber.Ctx) error {
	refreshSecret := c.Cookies(RefreshCookieName)
	if refreshSecret == "" {
		return response.Error(c, fiber.StatusBadRequest,
			"Refresh token is missing", "REFRESH_TOKEN_MISSING")
	}

	accessToken, err := h.sessions.Reissue(c.Context(), refreshSecret)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRefreshToken):
			return response.Error(c, fiber.StatusUnauthorized,
				"Refresh token is not valid", "INVALID_REFRESH_TOKEN")
		case errors.Is(err, services.ErrExpiredRefreshToken):
			return response.Error(c, fiber.StatusUnauthorized,
				"Refresh token has expired", "EXPIRED_REFRESH_TOKEN")
		default:
			response.LogError(c, "Reissue", err)
			return response.InternalServerError(c, "Failed to reissue token")
		}
	}

	return response.Success(c, TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(h.sessions.AccessTTL().Seconds()),
	})
}
