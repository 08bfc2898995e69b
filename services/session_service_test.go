package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/device"
)

// fakeRefreshStore records calls and serves canned lookups.
type fakeRefreshStore struct {
	upserts       []upsertCall
	revoked       []revokeCall
	revokeAllHits int64
	deletedUser   uint
	findRecord    *model.RefreshToken
	findErr       error
}

type upsertCall struct {
	userID     uint
	deviceInfo string
	hash       []byte
	expiresAt  time.Time
}

type revokeCall struct {
	userID     uint
	deviceInfo string
}

func (f *fakeRefreshStore) Upsert(_ context.Context, userID uint, deviceInfo string, hash []byte, expiresAt time.Time) error {
	f.upserts = append(f.upserts, upsertCall{userID, deviceInfo, hash, expiresAt})
	return nil
}

func (f *fakeRefreshStore) FindActiveByHash(_ context.Context, _ []byte) (*model.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findRecord, nil
}

func (f *fakeRefreshStore) RevokeDevice(_ context.Context, userID uint, deviceInfo string) error {
	f.revoked = append(f.revoked, revokeCall{userID, deviceInfo})
	return nil
}

func (f *fakeRefreshStore) RevokeAll(_ context.Context, _ uint) (int64, error) {
	return f.revokeAllHits, nil
}

func (f *fakeRefreshStore) DeleteAllForUser(_ context.Context, userID uint) error {
	f.deletedUser = userID
	return nil
}

// fakeBlacklist records Add calls.
type fakeBlacklist struct {
	added map[string]time.Duration
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{added: make(map[string]time.Duration)}
}

func (f *fakeBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	f.added[jti] = ttl
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := f.added[jti]
	return ok, nil
}

func newTestSessionService(store RefreshTokenStore, blacklist TokenBlacklist) *SessionService {
	policy := auth.TokenPolicy{
		Secret:    "test-signing-secret",
		Issuer:    "cocal-api",
		Audience:  "cocal-web",
		AccessTTL: 20 * time.Minute,
		ClockSkew: 30 * time.Second,
	}
	return NewSessionService(nil, auth.NewTokenCodec(policy), auth.NewRefreshGenerator(),
		store, blacklist, 30*24*time.Hour)
}

func TestReissueRejectsMalformedSecret(t *testing.T) {
	t.Parallel()

	svc := newTestSessionService(&fakeRefreshStore{}, newFakeBlacklist())

	_, err := svc.Reissue(context.Background(), "not base64url!!")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestReissueRejectsUnknownSecret(t *testing.T) {
	t.Parallel()

	// Never-issued, revoked and rotated-away secrets all surface the same
	// uniform error.
	store := &fakeRefreshStore{findErr: ErrRefreshTokenNotFound}
	svc := newTestSessionService(store, newFakeBlacklist())

	secret, _, err := auth.NewRefreshGenerator().Generate()
	require.NoError(t, err)

	_, err = svc.Reissue(context.Background(), secret)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestReissueRejectsExpiredRecord(t *testing.T) {
	t.Parallel()

	store := &fakeRefreshStore{findRecord: &model.RefreshToken{
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Minute),
	}}
	svc := newTestSessionService(store, newFakeBlacklist())

	secret, _, err := auth.NewRefreshGenerator().Generate()
	require.NoError(t, err)

	_, err = svc.Reissue(context.Background(), secret)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestLogoutDeviceBlacklistsTokenAndRevokesDevice(t *testing.T) {
	t.Parallel()

	store := &fakeRefreshStore{}
	blacklist := newFakeBlacklist()
	svc := newTestSessionService(store, blacklist)

	expiresAt := time.Now().Add(10 * time.Minute)
	err := svc.LogoutDevice(context.Background(), 42, "macOS / Computer / Chrome", "jti-1", expiresAt)
	require.NoError(t, err)

	// Blacklist TTL covers the token's remaining life, not the full TTL.
	ttl, ok := blacklist.added["jti-1"]
	require.True(t, ok, "token id was not blacklisted")
	assert.LessOrEqual(t, ttl, 10*time.Minute)
	assert.Greater(t, ttl, 9*time.Minute)

	require.Len(t, store.revoked, 1)
	assert.Equal(t, revokeCall{42, "macOS / Computer / Chrome"}, store.revoked[0])
}

func TestLogoutDeviceNormalizesEmptyDevice(t *testing.T) {
	t.Parallel()

	store := &fakeRefreshStore{}
	svc := newTestSessionService(store, newFakeBlacklist())

	err := svc.LogoutDevice(context.Background(), 42, "", "jti-1", time.Now().Add(time.Minute))
	require.NoError(t, err)

	require.Len(t, store.revoked, 1)
	assert.Equal(t, device.UnknownDevice, store.revoked[0].deviceInfo)
}

func TestLogoutDeviceSkipsBlacklistForExpiredToken(t *testing.T) {
	t.Parallel()

	store := &fakeRefreshStore{}
	blacklist := newFakeBlacklist()
	svc := newTestSessionService(store, blacklist)

	err := svc.LogoutDevice(context.Background(), 42, "d", "jti-old", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	assert.Empty(t, blacklist.added)
	assert.Len(t, store.revoked, 1)
}

func TestLogoutAllReturnsRevokedCount(t *testing.T) {
	t.Parallel()

	store := &fakeRefreshStore{revokeAllHits: 3}
	svc := newTestSessionService(store, newFakeBlacklist())

	count, err := svc.LogoutAll(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestDestroySessionsDeletesAllRecords(t *testing.T) {
	t.Parallel()

	store := &fakeRefreshStore{}
	svc := newTestSessionService(store, newFakeBlacklist())

	require.NoError(t, svc.DestroySessions(context.Background(), 42))
	assert.Equal(t, uint(42), store.deletedUser)
}
