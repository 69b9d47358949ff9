package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"votp_backend/internal/feature/auth/domain/entity"
	"votp_backend/internal/feature/auth/usecase"
)

// codeGorm stores verification codes in the pending_codes table on the
// master partition. It is the fallback when Redis is unavailable.
type codeGorm struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ usecase.CodeRepository = (*codeGorm)(nil)

// NewCodeGorm creates a code repository on the given master connection.
// Every call is bounded by timeout; a non-positive value falls back to
// defaultStorageTimeout.
func NewCodeGorm(db *gorm.DB, timeout time.Duration) *codeGorm {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &codeGorm{db: db, timeout: timeout}
}

func (r *codeGorm) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Put upserts the code for the email. The primary key on email makes the
// upsert replace any previous code, keeping at most one live code per
// address.
func (r *codeGorm) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	now := time.Now()
	pending := &entity.PendingCode{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
		}).
		Create(pending).Error
}

// Consume deletes the row only if email, code and a future expiry all match,
// in a single conditional statement. Zero rows affected means another caller
// consumed the code first or it never was live; an existing row with a
// different code is a mismatch. Expired rows are logically invalid whether or
// not the sweep removed them yet.
func (r *codeGorm) Consume(ctx context.Context, email, code string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND expires_at > ?", email, code, time.Now()).
		Delete(&entity.PendingCode{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Distinguish mismatch from expiry/absence for the caller.
	var pending entity.PendingCode
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&pending).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return usecase.ErrCodeExpired
	case err != nil:
		return err
	case pending.Expired():
		return usecase.ErrCodeExpired
	default:
		return usecase.ErrCodeMismatch
	}
}

// DeleteExpired physically removes expired rows. Logical invalidity does not
// depend on this sweep; it only reclaims space.
func (r *codeGorm) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&entity.PendingCode{})
	return res.RowsAffected, res.Error
}
