package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/response"
)

// TokenBlacklist is the deny-list consulted before a bearer token is trusted.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID    uint
	Email     string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthMiddleware resolves bearer tokens into a request principal.
type AuthMiddleware struct {
	codec     *auth.TokenCodec
	blacklist TokenBlacklist
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(codec *auth.TokenCodec, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		codec:     codec,
		blacklist: blacklist,
	}
}

// ResolveBearer extracts the token from an Authorization header value.
func ResolveBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticate runs once per request. Outcomes:
//   - no bearer token: continue unauthenticated, the route's own policy
//     decides whether that is acceptable
//   - blacklisted token: 401 short-circuit, the request never reaches routing
//   - verification failure: clear the principal and continue unauthenticated
//   - valid token: principal stored on the request context
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := ResolveBearer(c.Get("Authorization"))
		if !ok {
			return c.Next()
		}

		// Blacklist check comes first, keyed by the jti read without
		// signature verification. A forged jti only ever produces a
		// false 401, never authentication. A failing blacklist store
		// fails open, so the outage is logged before continuing.
		if unverified, err := m.codec.ExtractClaims(token); err == nil && unverified.ID != "" {
			blacklisted, err := m.blacklist.IsBlacklisted(c.Context(), unverified.ID)
			if err != nil {
				response.LogError(c, "Blacklist check", err)
			} else if blacklisted {
				return response.Error(c, fiber.StatusUnauthorized,
					"Token has been logged out", "TOKEN_BLACKLISTED")
			}
		}

		claims, err := m.codec.Verify(token)
		if err != nil {
			clearPrincipal(c)
			return c.Next()
		}

		userID, err := auth.ExtractSubject(claims)
		if err != nil {
			clearPrincipal(c)
			return c.Next()
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}

		principal := &Principal{
			UserID:    userID,
			Email:     claims.Email,
			Roles:     claims.Roles,
			TokenID:   claims.ID,
			ExpiresAt: expiresAt,
		}

		c.Locals("principal", principal)
		c.Locals("user_id", principal.UserID)
		c.Locals("user_email", principal.Email)
		c.Locals("token_jti", principal.TokenID)

		return c.Next()
	}
}

// RequireAuth rejects requests that did not authenticate.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetPrincipal(c); !ok {
			return response.Unauthorized(c, "Authentication required")
		}
		return c.Next()
	}
}

// RequireRole rejects authenticated requests lacking all of the given roles.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}
		for _, role := range roles {
			if principal.HasRole(role) {
				return c.Next()
			}
		}
		return response.Forbidden(c, "Insufficient permissions")
	}
}

func clearPrincipal(c *fiber.Ctx) {
	c.Locals("principal", nil)
	c.Locals("user_id", nil)
	c.Locals("user_email", nil)
	c.Locals("token_jti", nil)
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals("principal").(*Principal)
	return principal, ok && principal != nil
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	if principal, ok := GetPrincipal(c); ok {
		return principal.UserID, true
	}
	return 0, false
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	if principal, ok := GetPrincipal(c); ok && principal.TokenID != "" {
		return principal.TokenID, true
	}
	return "", false
}
