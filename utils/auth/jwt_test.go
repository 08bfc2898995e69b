package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() TokenPolicy {
	return TokenPolicy{
		Secret:    "test-signing-secret",
		Issuer:    "cocal-api",
		Audience:  "cocal-web",
		AccessTTL: 20 * time.Minute,
		ClockSkew: 30 * time.Second,
	}
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testPolicy())

	token, jti, err := codec.Issue(42, "alice@example.com", []string{"USER"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, []string{"USER"}, claims.Roles)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "cocal-api", claims.Issuer)
}

func TestIssueGeneratesFreshJTI(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testPolicy())

	_, jti1, err := codec.Issue(1, "a@example.com", nil)
	require.NoError(t, err)
	_, jti2, err := codec.Issue(1, "a@example.com", nil)
	require.NoError(t, err)

	assert.NotEqual(t, jti1, jti2)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testPolicy())
	token, _, err := codec.Issue(7, "bob@example.com", nil)
	require.NoError(t, err)

	other := testPolicy()
	other.Secret = "a-different-secret"
	otherCodec := NewTokenCodec(other)

	_, err = otherCodec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.AccessTTL = -time.Hour
	policy.ClockSkew = 0
	expiredCodec := NewTokenCodec(policy)

	token, _, err := expiredCodec.Issue(7, "bob@example.com", nil)
	require.NoError(t, err)

	_, err = expiredCodec.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyAllowsExpiryWithinSkew(t *testing.T) {
	t.Parallel()

	// Token expired 10s ago; a 30s skew must still accept it.
	policy := testPolicy()
	policy.AccessTTL = -10 * time.Second
	issueCodec := NewTokenCodec(policy)

	token, _, err := issueCodec.Issue(7, "bob@example.com", nil)
	require.NoError(t, err)

	_, err = NewTokenCodec(testPolicy()).Verify(token)
	assert.NoError(t, err)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testPolicy())
	token, _, err := codec.Issue(7, "bob@example.com", nil)
	require.NoError(t, err)

	other := testPolicy()
	other.Issuer = "someone-else"
	_, err = NewTokenCodec(other).Verify(token)
	assert.ErrorIs(t, err, ErrIssuerMismatch)
}

func TestVerifyRejectsAudienceMismatch(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testPolicy())
	token, _, err := codec.Issue(7, "bob@example.com", nil)
	require.NoError(t, err)

	other := testPolicy()
	other.Audience = "another-app"
	_, err = NewTokenCodec(other).Verify(token)
	assert.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cocal-api",
			Audience:  jwt.ClaimStrings{"cocal-web"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenCodec(testPolicy()).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec(testPolicy()).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractClaimsSkipsSignatureCheck(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.AccessTTL = -time.Hour
	policy.ClockSkew = 0
	codec := NewTokenCodec(policy)

	token, jti, err := codec.Issue(7, "bob@example.com", nil)
	require.NoError(t, err)

	// Expired tokens still surface their jti for the blacklist check.
	claims, err := codec.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
}

func TestExtractSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		claims  Claims
		want    uint
		wantErr error
	}{
		{
			name:   "uid claim wins",
			claims: Claims{UID: 42, RegisteredClaims: jwt.RegisteredClaims{Subject: "99"}},
			want:   42,
		},
		{
			name:   "numeric subject fallback",
			claims: Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "99"}},
			want:   99,
		},
		{
			name:    "non-numeric subject",
			claims:  Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}},
			wantErr: ErrMalformedSubject,
		},
		{
			name:    "empty claims",
			claims:  Claims{},
			wantErr: ErrMalformedSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSubject(&tt.claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
