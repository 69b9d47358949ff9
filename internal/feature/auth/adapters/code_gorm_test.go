package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votp_backend/internal/feature/auth/usecase"
)

func TestCodeGorm_PutAndConsume(t *testing.T) {
	repo := NewCodeGorm(setupTestDB(t), time.Second)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "a@b.com", "123456", 10*time.Minute))

	err := repo.Consume(ctx, "a@b.com", "123456")
	assert.NoError(t, err)

	// A consumed code is gone; the second submission fails.
	err = repo.Consume(ctx, "a@b.com", "123456")
	assert.ErrorIs(t, err, usecase.ErrCodeExpired)
}

func TestCodeGorm_Mismatch(t *testing.T) {
	repo := NewCodeGorm(setupTestDB(t), time.Second)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "a@b.com", "123456", 10*time.Minute))

	err := repo.Consume(ctx, "a@b.com", "654321")
	assert.ErrorIs(t, err, usecase.ErrCodeMismatch)

	// The live code survives a bad guess.
	assert.NoError(t, repo.Consume(ctx, "a@b.com", "123456"))
}

func TestCodeGorm_SecondCodeInvalidatesFirst(t *testing.T) {
	repo := NewCodeGorm(setupTestDB(t), time.Second)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "a@b.com", "111111", 10*time.Minute))
	require.NoError(t, repo.Put(ctx, "a@b.com", "222222", 10*time.Minute))

	// The first code is no longer live; only the second consumes.
	err := repo.Consume(ctx, "a@b.com", "111111")
	assert.ErrorIs(t, err, usecase.ErrCodeMismatch)
	assert.NoError(t, repo.Consume(ctx, "a@b.com", "222222"))
}

func TestCodeGorm_ExpiredCode(t *testing.T) {
	repo := NewCodeGorm(setupTestDB(t), time.Second)
	ctx := context.Background()

	// Already expired at insert time: logically invalid even though the row
	// still exists physically.
	require.NoError(t, repo.Put(ctx, "a@b.com", "123456", -time.Minute))

	err := repo.Consume(ctx, "a@b.com", "123456")
	assert.ErrorIs(t, err, usecase.ErrCodeExpired)
}

func TestCodeGorm_DeleteExpired(t *testing.T) {
	repo := NewCodeGorm(setupTestDB(t), time.Second)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "old@b.com", "111111", -time.Minute))
	require.NoError(t, repo.Put(ctx, "new@b.com", "222222", 10*time.Minute))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The live code is untouched.
	assert.NoError(t, repo.Consume(ctx, "new@b.com", "222222"))
}

func TestCodeGorm_CodesAreIndependentPerEmail(t *testing.T) {
	repo := NewCodeGorm(setupTestDB(t), time.Second)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "a@b.com", "111111", 10*time.Minute))
	require.NoError(t, repo.Put(ctx, "c@d.com", "222222", 10*time.Minute))

	assert.NoError(t, repo.Consume(ctx, "a@b.com", "111111"))
	assert.NoError(t, repo.Consume(ctx, "c@d.com", "222222"))
}
