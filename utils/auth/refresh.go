package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// RefreshSecretSize is the entropy of the client-facing refresh secret in
// bytes before encoding (43 chars base64url).
const RefreshSecretSize = 32

// ErrMalformedRefreshSecret is returned when a client-submitted secret is not
// valid base64url.
var ErrMalformedRefreshSecret = errors.New("malformed refresh secret")

// RefreshGenerator produces opaque refresh secrets and their storage digests.
// The raw bytes never leave this package; the server keeps only the SHA-256
// digest, so a leaked database row cannot be replayed as a secret.
type RefreshGenerator struct{}

// NewRefreshGenerator creates a refresh secret generator
func NewRefreshGenerator() *RefreshGenerator {
	return &RefreshGenerator{}
}

// Generate draws 32 cryptographically random bytes and returns the
// base64url-encoded client secret (no padding) together with the SHA-256
// digest of the raw bytes for storage.
func (g *RefreshGenerator) Generate() (string, []byte, error) {
	raw := make([]byte, RefreshSecretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	secret := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256(raw)
	return secret, sum[:], nil
}

// Hash re-derives the storage digest from a client-submitted secret for
// lookup during reissue. Deterministic: same secret, same digest.
func (g *RefreshGenerator) Hash(secret string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(secret)
	if err != nil {
		return nil, ErrMalformedRefreshSecret
	}
	sum := sha256.Sum256(raw)
	return sum[:], nil
}
