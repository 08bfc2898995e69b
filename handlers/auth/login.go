package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cocalhq/cocal-api/services"
	"github.com/cocalhq/cocal-api/utils/device"
	"github.com/cocalhq/cocal-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User UserResponse `json:"user"`
	TokenResponse
}

// Login handles user login. The access token goes back in the body; the
// refresh secret only ever leaves as an HttpOnly cookie scoped to /api/auth.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	ip := c.IP()
	deviceInfo := device.Fingerprint(c.Get(fiber.HeaderUserAgent))

	user, pair, err := h.sessions.Login(c.Context(), req.Email, req.Password, deviceInfo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotFound):
			if h.bruteForceProtection != nil {
				h.bruteForceProtection.RecordFailedAttempt(c, ip)
			}
			return response.Error(c, fiber.StatusNotFound, "Email not found", "EMAIL_NOT_FOUND")
		case errors.Is(err, services.ErrPasswordMismatch):
			if h.bruteForceProtection != nil {
				h.bruteForceProtection.RecordFailedAttempt(c, ip)
			}
			return response.Error(c, fiber.StatusUnauthorized, "Password does not match", "PASSWORD_MISMATCH")
		default:
			response.LogError(c, "Login", err)
			return response.InternalServerError(c, "Failed to log in")
		}
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	setRefreshCookie(c, pair.RefreshSecret, h.sessions.RefreshTTL())

	res := LoginResponse{
		User: UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Nickname:  user.Nickname,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		TokenResponse: TokenResponse{
			AccessToken: pair.AccessToken,
			ExpiresIn:   int(h.sessions.AccessTTL().Seconds()),
		},
	}

	return response.Success(c, res)
}
