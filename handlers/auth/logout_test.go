package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/services"
	authutil "github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/middleware"
)

type recordingStore struct {
	revokedUser   uint
	revokedDevice string
}

func (s *recordingStore) Upsert(context.Context, uint, string, []byte, time.Time) error {
	return nil
}

func (s *recordingStore) FindActiveByHash(context.Context, []byte) (*model.RefreshToken, error) {
	return nil, services.ErrRefreshTokenNotFound
}

func (s *recordingStore) RevokeDevice(_ context.Context, userID uint, deviceInfo string) error {
	s.revokedUser = userID
	s.revokedDevice = deviceInfo
	return nil
}

func (s *recordingStore) RevokeAll(context.Context, uint) (int64, error) { return 0, nil }

func (s *recordingStore) DeleteAllForUser(context.Context, uint) error { return nil }

type recordingBlacklist struct {
	added map[string]time.Duration
}

func (b *recordingBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if b.added == nil {
		b.added = map[string]time.Duration{}
	}
	b.added[jti] = ttl
	return nil
}

func (b *recordingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, nil
}

// Logout identifies the session purely through the authenticated principal,
// so it must succeed even when no Authorization header reaches the handler.
func TestLogoutSucceedsWithoutAuthorizationHeader(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	blacklist := &recordingBlacklist{}

	codec := authutil.NewTokenCodec(authutil.TokenPolicy{
		Secret:    "test-signing-secret",
		Issuer:    "cocal-api",
		Audience:  "cocal-web",
		AccessTTL: 20 * time.Minute,
	})
	sessions := services.NewSessionService(nil, codec, authutil.NewRefreshGenerator(),
		store, blacklist, 14*24*time.Hour)
	handler := NewAuthHandler(nil, sessions, nil)

	expiresAt := time.Now().Add(10 * time.Minute)

	app := fiber.New()
	app.Post("/api/auth/logout", func(c *fiber.Ctx) error {
		c.Locals("principal", &middleware.Principal{
			UserID:    7,
			Email:     "alice@example.com",
			TokenID:   "jti-logout",
			ExpiresAt: expiresAt,
		})
		return handler.Logout(c)
	})

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, uint(7), store.revokedUser)
	assert.NotEmpty(t, store.revokedDevice)
	assert.Contains(t, blacklist.added, "jti-logout")

	var cleared bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == RefreshCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "refresh cookie should be expired")
}
