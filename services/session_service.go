package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/device"
)

var (
	ErrEmailNotFound    = errors.New("email not found")
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrInvalidRefreshToken covers never-issued, revoked and mismatched
	// secrets uniformly; callers must not learn which.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)

// RefreshTokenStore is the narrow persistence surface the session service
// mutates refresh sessions through.
type RefreshTokenStore interface {
	Upsert(ctx context.Context, userID uint, deviceInfo string, hash []byte, expiresAt time.Time) error
	FindActiveByHash(ctx context.Context, hash []byte) (*model.RefreshToken, error)
	RevokeDevice(ctx context.Context, userID uint, deviceInfo string) error
	RevokeAll(ctx context.Context, userID uint) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
}

// TokenBlacklist is the deny-list for access token ids.
type TokenBlacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// TokenPair is what a successful login hands back to the client: a signed
// access token plus the opaque refresh secret (set as a cookie by the
// handler, never stored server-side).
type TokenPair struct {
	AccessToken   string
	RefreshSecret string
}

// SessionService orchestrates login, logout and reissue over the codec,
// generator, refresh store and blacklist. Safe under concurrent calls for the
// same user and device; the single-live-row guarantee lives in the store.
type SessionService struct {
	db         *gorm.DB
	codec      *auth.TokenCodec
	generator  *auth.RefreshGenerator
	store      RefreshTokenStore
	blacklist  TokenBlacklist
	refreshTTL time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(db *gorm.DB, codec *auth.TokenCodec, generator *auth.RefreshGenerator,
	store RefreshTokenStore, blacklist TokenBlacklist, refreshTTL time.Duration) *SessionService {
	return &SessionService{
		db:         db,
		codec:      codec,
		generator:  generator,
		store:      store,
		blacklist:  blacklist,
		refreshTTL: refreshTTL,
	}
}

// Login verifies credentials and establishes a session for the device.
// Afterwards exactly one live refresh record exists for (user, device),
// whatever the prior state. Unknown email and wrong password are reported as
// distinct errors, matching the API contract.
func (s *SessionService) Login(ctx context.Context, email, password, deviceInfo string) (*model.User, *TokenPair, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEmailNotFound
		}
		return nil, nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, ErrPasswordMismatch
		}
		return nil, nil, err
	}

	accessToken, _, err := s.codec.Issue(user.ID, user.Email, user.Roles())
	if err != nil {
		return nil, nil, err
	}

	secret, hash, err := s.generator.Generate()
	if err != nil {
		return nil, nil, err
	}

	if deviceInfo == "" {
		deviceInfo = device.UnknownDevice
	}

	if err := s.store.Upsert(ctx, user.ID, deviceInfo, hash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, nil, err
	}

	return &user, &TokenPair{AccessToken: accessToken, RefreshSecret: secret}, nil
}

// LogoutDevice blacklists the presented access token for its remaining
// lifetime, making it unusable on the very next request, then revokes the
// device's refresh record. Idempotent.
func (s *SessionService) LogoutDevice(ctx context.Context, userID uint, deviceInfo, tokenID string, tokenExpiresAt time.Time) error {
	if err := s.blacklist.Add(ctx, tokenID, time.Until(tokenExpiresAt)); err != nil {
		return err
	}

	if deviceInfo == "" {
		deviceInfo = device.UnknownDevice
	}
	return s.store.RevokeDevice(ctx, userID, deviceInfo)
}

// LogoutAll revokes every live refresh record for the user and returns the
// count. Other devices' in-flight access tokens are NOT blacklisted; they
// stay valid until their own expiry and the short access TTL bounds that
// window.
func (s *SessionService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	return s.store.RevokeAll(ctx, userID)
}

// Reissue exchanges a client-held refresh secret for a fresh access token.
// The refresh secret itself is returned to service unchanged: there is no
// rotation on reissue.
func (s *SessionService) Reissue(ctx context.Context, refreshSecret string) (string, error) {
	hash, err := s.generator.Hash(refreshSecret)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	record, err := s.store.FindActiveByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	// The store already filters on expiry; re-check here so a stale read
	// can never mint a token past the window.
	if !record.ExpiresAt.After(time.Now()) {
		return "", ErrExpiredRefreshToken
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, record.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	accessToken, _, err := s.codec.Issue(user.ID, user.Email, user.Roles())
	return accessToken, err
}

// DestroySessions hard-deletes every refresh record for the user. Account
// deletion only.
func (s *SessionService) DestroySessions(ctx context.Context, userID uint) error {
	return s.store.DeleteAllForUser(ctx, userID)
}

// AccessTTL exposes the configured access token lifetime for response bodies.
func (s *SessionService) AccessTTL() time.Duration {
	return s.codec.AccessTTL()
}

// RefreshTTL exposes the refresh window so the cookie max-age can match it.
func (s *SessionService) RefreshTTL() time.Duration {
	return s.refreshTTL
}
