package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"votp_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength is the minimum accepted password length.
	minPasswordLength = 8

	// codeDigits is the width of a verification code.
	codeDigits = 6
)

// UserRepository abstracts the persistence layer for accounts. Following Go
// convention, the interface is defined by the consumer (usecase), not the
// provider (adapters).
type UserRepository interface {
	// Create persists a new account. Returns ErrEmailAlreadyExists when the
	// unique email constraint is violated.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns the account for a lowercased email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns the account with the given id.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// ExistsByEmail reports whether an account with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateProfile applies the non-nil profile fields and returns the
	// updated account.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, bio *string) (*entity.User, error)

	// Delete removes the account. Returns ErrUserNotFound when it does not
	// exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentPurger removes all content an account owns. Satisfied by the
// comments repository; decoupled behind an interface so auth does not depend
// on the comments feature.
type CommentPurger interface {
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// CodeRepository abstracts the verification-code store. Implementations must
// keep at most one live code per email and consume codes atomically so two
// concurrent signups cannot both succeed with the same code.
type CodeRepository interface {
	// Put stores a code for the email with the given time to live, replacing
	// and thereby invalidating any previous code for that email.
	Put(ctx context.Context, email, code string, ttl time.Duration) error

	// Consume atomically removes the live code for the email if it matches.
	// Returns ErrCodeMismatch or ErrCodeExpired otherwise.
	Consume(ctx context.Context, email, code string) error

	// DeleteExpired removes expired codes; stores with native expiry no-op.
	DeleteExpired(ctx context.Context) (int64, error)
}

// Mailer sends account emails.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendWelcome(ctx context.Context, email, name string) error
}

// TokenGenerator mints signed session tokens.
type TokenGenerator interface {
	GenerateToken(accountID string, email string) (string, error)
}

// PasswordHasher derives and verifies password credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, credential string) (bool, error)
}

// AuthResult bundles a session token with the account it belongs to.
type AuthResult struct {
	Token string
	User  *entity.User
}

// AuthUsecase implements signup verification, login and profile management.
type AuthUsecase struct {
	users  UserRepository
	codes  CodeRepository
	mailer Mailer
	tokens TokenGenerator
	hasher PasswordHasher
	purger CommentPurger

	codeExpiry time.Duration

	// dummyCredential is verified against when the account does not exist,
	// so login duration does not reveal whether an email is registered.
	dummyCredential string
}

// NewAuthUsecase wires the auth business logic. The code expiry is the fixed
// validity window for verification codes. The purger may be nil, in which
// case account deletion leaves comments behind.
func NewAuthUsecase(users UserRepository, codes CodeRepository, mailer Mailer,
	tokens TokenGenerator, hasher PasswordHasher, purger CommentPurger,
	codeExpiry time.Duration) (*AuthUsecase, error) {

	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy credential: %w", err)
	}

	return &AuthUsecase{
		users:           users,
		codes:           codes,
		mailer:          mailer,
		tokens:          tokens,
		hasher:          hasher,
		purger:          purger,
		codeExpiry:      codeExpiry,
		dummyCredential: dummy,
	}, nil
}

// CheckEmailExists reports whether an account is already registered for the
// email.
func (u *AuthUsecase) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	return u.users.ExistsByEmail(ctx, normalizeEmail(email))
}

// RequestVerificationCode issues a fresh 6-digit code for the email, stores
// it with the configured expiry and mails it out. Any previous live code for
// the email is invalidated by the store.
func (u *AuthUsecase) RequestVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	exists, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailAlreadyExists
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := u.codes.Put(ctx, email, code, u.codeExpiry); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := u.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	slog.Info("verification code sent", "email", email)
	return nil
}

// CompleteSignup consumes the verification code and creates the account in
// one logical step. Code consumption is atomic at the store, and account
// creation is guarded by the unique email index, so of two concurrent
// completions exactly one wins; the loser observes ErrCodeExpired or
// ErrEmailAlreadyExists, never a duplicate account.
func (u *AuthUsecase) CompleteSignup(ctx context.Context, email, code, name, pass string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if err := validatePassword(pass); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	exists, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	if err := u.codes.Consume(ctx, email, code); err != nil {
		return nil, err
	}

	credential, err := u.hasher.Hash(pass)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: credential,
		Verified:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := u.tokens.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// The welcome mail is best effort and never fails the signup.
	if err := u.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		slog.Warn("failed to send welcome email", "error", err, "email", user.Email)
	}

	slog.Info("user signed up", "email", user.Email)
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates an account and returns a session token. The password
// is always verified, against a dummy credential when the account does not
// exist, so timing does not leak registration status.
func (u *AuthUsecase) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := u.users.FindByEmail(ctx, email)

	credential := u.dummyCredential
	if err == nil {
		credential = user.PasswordHash
	}
	ok, verifyErr := u.hasher.Verify(pass, credential)

	if err != nil || verifyErr != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, ErrNotVerified
	}

	token, err := u.tokens.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("user logged in", "email", user.Email)
	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser returns the account for an authenticated id.
func (u *AuthUsecase) CurrentUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// UpdateProfile applies the provided profile fields to the account.
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, bio *string) (*entity.User, error) {
	return u.users.UpdateProfile(ctx, id, name, phone, bio)
}

// DeleteAccount removes the account and everything it owns. Comments are
// purged first so a crash in between leaves an orphan-free comment store and
// a still-deletable account.
func (u *AuthUsecase) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if u.purger != nil {
		purged, err := u.purger.DeleteByAccount(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to purge comments: %w", err)
		}
		slog.Info("account comments purged", "email", user.Email, "count", purged)
	}

	if err := u.users.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("account deleted", "email", user.Email)
	return nil
}

func validatePassword(pass string) error {
	if len(pass) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrWeakPassword, minPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode draws a uniformly random 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()+100000), nil
}
