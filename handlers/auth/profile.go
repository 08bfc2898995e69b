package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/middleware"
	"github.com/cocalhq/cocal-api/utils/response"
)

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var user model.User
	if err := h.db.WithContext(c.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		response.LogError(c, "Profile load", err)
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
}

// DeleteAccount removes the account. Refresh records are hard-deleted (not
// merely revoked) and the in-flight access token is blacklisted.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if err := h.sessions.LogoutDevice(c.Context(), principal.UserID, "",
		principal.TokenID, principal.ExpiresAt); err != nil {
		response.LogError(c, "Account deletion logout", err)
		return response.InternalServerError(c, "Failed to delete account")
	}

	if err := h.sessions.DestroySessions(c.Context(), principal.UserID); err != nil {
		response.LogError(c, "Account deletion sessions", err)
		return response.InternalServerError(c, "Failed to delete account")
	}

	if err := h.db.WithContext(c.Context()).Delete(&model.User{}, principal.UserID).Error; err != nil {
		response.LogError(c, "Account deletion", err)
		return response.InternalServerError(c, "Failed to delete account")
	}

	clearRefreshCookie(c)

	return response.Success(c, fiber.Map{"message": "Account deleted."})
}
