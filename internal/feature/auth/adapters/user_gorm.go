// Package adapters provides the repository implementations for the auth
// feature. Accounts live on the fallback/master partition only.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"votp_backend/internal/feature/auth/domain/entity"
	"votp_backend/internal/feature/auth/usecase"
)

// defaultStorageTimeout bounds a repository call when no timeout is
// configured.
const defaultStorageTimeout = 5 * time.Second

// userGorm is the gorm implementation of usecase.UserRepository.
type userGorm struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a user repository on the given master connection.
// The connection must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey. Every call is bounded by timeout; a
// non-positive value falls back to defaultStorageTimeout.
func NewUserGorm(db *gorm.DB, timeout time.Duration) *userGorm {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &userGorm{db: db, timeout: timeout}
}

func (r *userGorm) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Create inserts a new account. A duplicate email maps to
// usecase.ErrEmailAlreadyExists; this is what the loser of a concurrent
// signup race observes.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user must not be nil")
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail retrieves an account by its lowercased email.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID retrieves an account by id.
func (r *userGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail reports whether an account exists for the email.
func (r *userGorm) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfile applies the non-nil fields and returns the updated account.
func (r *userGorm) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, bio *string) (*entity.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if phone != nil {
		updates["phone"] = *phone
	}
	if bio != nil {
		updates["bio"] = *bio
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, usecase.ErrUserNotFound
		}
	}

	return r.FindByID(ctx, id)
}

// Delete removes the account row.
func (r *userGorm) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
