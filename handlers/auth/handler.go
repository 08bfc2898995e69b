package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/services"
	"github.com/cocalhq/cocal-api/utils/middleware"
	"github.com/cocalhq/cocal-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	sessions             *services.SessionService
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, sessions *services.SessionService, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		sessions:             sessions,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenResponse carries a freshly issued access token and its lifetime. The
// refresh secret never appears in a response body; it travels only in the
// HttpOnly cookie.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
}
