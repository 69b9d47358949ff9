// Package jwtauth issues and validates the signed session tokens that prove
// prior authentication. Tokens are stateless: validity is established purely
// by signature and expiry, there is no server-side revocation list, so logout
// is a client-side discard.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned for a token whose validity window has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for a token that fails signature or claim
	// checks for any reason other than expiry.
	ErrTokenInvalid = errors.New("invalid token")
)

// Generator defines the interface for session token generation.
type Generator interface {
	// GenerateToken creates a signed session token for the given account.
	GenerateToken(accountID string, email string) (string, error)
}

// Validator defines the interface for session token validation.
type Validator interface {
	// ValidateToken checks signature and expiry and returns the account id
	// the token was issued for.
	ValidateToken(token string) (string, error)
}

// Service implements both Generator and Validator over one HS256 secret.
type Service struct {
	secret   []byte
	validity time.Duration
}

// NewService creates a token service with the provided signing secret and
// validity window.
func NewService(secret string, validity time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		validity: validity,
	}
}

// GenerateToken creates a signed token with standard claims. The expiry is
// encoded into the token itself; nothing is persisted server-side.
func (s *Service) GenerateToken(accountID string, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   accountID,
		"exp":   now.Add(s.validity).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken verifies signature and expiry and extracts the account id.
// Expired tokens and otherwise-invalid tokens are distinct error kinds so
// callers can log them differently; both map to the same generic user-facing
// rejection.
func (s *Service) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted; an attacker must not pick the algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}
