package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GenerateAndValidate(t *testing.T) {
	svc := NewService("test-secret", 24*time.Hour)

	token, err := svc.GenerateToken("5a1ed9e4-6f14-4f13-a9d8-bb25b31fe9b5", "test@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "5a1ed9e4-6f14-4f13-a9d8-bb25b31fe9b5", accountID)
}

func TestService_ExpiredToken(t *testing.T) {
	// Negative validity produces an already-expired token.
	svc := NewService("test-secret", -time.Hour)

	token, err := svc.GenerateToken("some-id", "test@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_WrongSecret(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	token, err := issuer.GenerateToken("some-id", "test@example.com")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_RejectsNonHMACAlgorithm(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	// Unsigned token with alg=none must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "some-id",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_GarbageToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	for _, tokenStr := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateToken(tokenStr)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tokenStr)
	}
}

func TestService_MissingSubject(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenStr, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
