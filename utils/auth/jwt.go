package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpiredToken     = errors.New("token has expired")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMalformedSubject = errors.New("token subject is not a user id")
)

// Claims represents access token claims
type Claims struct {
	UID   uint     `json:"uid,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies short-lived access tokens under a TokenPolicy.
// Sign/verify are CPU-bound; the codec holds no mutable state and is safe for
// concurrent use.
type TokenCodec struct {
	policy TokenPolicy
}

// NewTokenCodec creates a codec bound to the given policy
func NewTokenCodec(policy TokenPolicy) *TokenCodec {
	return &TokenCodec{policy: policy}
}

// AccessTTL returns the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.policy.AccessTTL
}

// Issue builds and signs an access token for the user. Returns the compact
// token and its jti.
func (c *TokenCodec) Issue(userID uint, email string, roles []string) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		UID:   userID,
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    c.policy.Issuer,
			Audience:  jwt.ClaimStrings{c.policy.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.policy.AccessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(c.policy.SigningKey())
	return signedToken, jti, err
}

// Verify checks signature, issuer, audience, expiry and not-before, allowing
// the policy's clock skew. Failures map to the codec's sentinel errors.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.policy.SigningKey(), nil
	},
		jwt.WithIssuer(c.policy.Issuer),
		jwt.WithAudience(c.policy.Audience),
		jwt.WithLeeway(c.policy.ClockSkew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrIssuerMismatch
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrAudienceMismatch
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// ExtractClaims extracts claims from a token without verifying the signature.
// Used to read the jti for the blacklist check before full verification.
func (c *TokenCodec) ExtractClaims(tokenString string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// ExtractSubject resolves the authenticated user id from verified claims.
// The numeric uid claim wins; the registered subject claim is the fallback
// and must parse as a positive integer.
func ExtractSubject(claims *Claims) (uint, error) {
	if claims.UID > 0 {
		return claims.UID, nil
	}
	if claims.Subject != "" {
		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err == nil && id > 0 {
			return uint(id), nil
		}
	}
	return 0, ErrMalformedSubject
}
