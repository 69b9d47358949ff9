// Package di selects between alternative implementations at startup.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "votp_backend/internal/feature/auth/adapters"
	"votp_backend/internal/feature/auth/usecase"
	"votp_backend/internal/platform/codes"
)

// NewCodeRepository creates a CodeRepository implementation. If Redis is
// available, codes live there with native TTL expiry. Otherwise they fall
// back to the master database. Calls on either store are bounded by timeout.
func NewCodeRepository(rdb *redis.Client, masterDB *gorm.DB, timeout time.Duration) usecase.CodeRepository {
	if rdb != nil {
		return codes.NewCodeRedis(rdb, "verify", timeout)
	}
	return authadapters.NewCodeGorm(masterDB, timeout)
}
