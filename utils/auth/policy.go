package auth

import "time"

// TokenPolicy holds the symmetric signing secret and the token issuance
// policy. It is injected into the codec (and anything else that needs the
// key) instead of being read from ambient globals, so the key can be swapped
// in tests and rotated later.
//
// A single active key is assumed; rotation with a still-valid previous key
// generation is a future extension.
type TokenPolicy struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessTTL time.Duration
	ClockSkew time.Duration
}

// SigningKey returns the HMAC key bytes for the currently active key.
func (p TokenPolicy) SigningKey() []byte {
	return []byte(p.Secret)
}
