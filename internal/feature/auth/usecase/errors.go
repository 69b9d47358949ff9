// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when an account cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when the email already belongs to a
	// verified account. Concurrent signup losers also end up here.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrCodeMismatch is returned when a submitted verification code does not
	// match the live code for the email.
	ErrCodeMismatch = errors.New("verification code does not match")

	// ErrCodeExpired is returned when no live verification code exists for the
	// email: it expired, was never requested, or was already consumed.
	ErrCodeExpired = errors.New("verification code expired or not found")

	// ErrInvalidCredentials is returned during login when email or password is
	// wrong. Deliberately indistinguishable between the two for callers.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotVerified is returned when logging into an account whose email was
	// never verified.
	ErrNotVerified = errors.New("email not verified")

	// ErrWeakPassword is returned when a signup password is below the minimum
	// length.
	ErrWeakPassword = errors.New("password is too short")

	// ErrEmptyName is returned when the signup name is empty after trimming.
	ErrEmptyName = errors.New("name must not be empty")
)
