package auth

import (
	"context"
	"time"

	"github.com/cocalhq/cocal-api/utils/cache"
)

const blacklistKeyPrefix = "auth:blacklist:"

// BlacklistService records access token ids (jti) that must be rejected
// before their natural expiry. Entries live in Redis with a TTL equal to the
// remaining lifetime of the token they guard, so the deny-list never grows
// past one access-token window.
type BlacklistService struct {
	cache *cache.RedisCache
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(cache *cache.RedisCache) *BlacklistService {
	return &BlacklistService{cache: cache}
}

// Add records a token id as rejected until its natural expiry. A TTL of zero
// or less means the token is already unusable; nothing is stored.
func (s *BlacklistService) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, blacklistKeyPrefix+jti, "revoked", ttl)
}

// IsBlacklisted checks membership for a token id. O(1), called on every
// authenticated request.
func (s *BlacklistService) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.cache.Exists(ctx, blacklistKeyPrefix+jti)
}
