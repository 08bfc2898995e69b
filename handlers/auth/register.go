package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	authutil "github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/device"
	"github.com/cocalhq/cocal-api/utils/response"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname" validate:"required,min=2"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User UserResponse `json:"user"`
	TokenResponse
}

// Register creates an account and immediately establishes a session for the
// registering device, like a first login.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	passwordHash, err := authutil.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, authutil.ErrPasswordTooShort) {
			return response.BadRequest(c, "Password must be at least 8 characters long")
		}
		response.LogError(c, "Password hash", err)
		return response.InternalServerError(c, "Failed to register")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Nickname:     req.Nickname,
		Role:         model.RoleUser,
	}

	if err := h.db.WithContext(c.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Email is already registered")
		}
		response.LogError(c, "Register", err)
		return response.InternalServerError(c, "Failed to register")
	}

	deviceInfo := device.Fingerprint(c.Get(fiber.HeaderUserAgent))

	_, pair, err := h.sessions.Login(c.Context(), req.Email, req.Password, deviceInfo)
	if err != nil {
		response.LogError(c, "Register session", err)
		return response.InternalServerError(c, "Failed to establish session")
	}

	setRefreshCookie(c, pair.RefreshSecret, h.sessions.RefreshTTL())

	res := RegisterResponse{
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

	return response.Created(c, res)
}
