// Package codes implements the verification-code store on Redis. Key expiry
// enforces the code lifetime, and a Lua script makes consumption atomic so a
// code can never be redeemed twice under concurrent submissions.
package codes

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"votp_backend/internal/feature/auth/usecase"
)

// consumeScript atomically compares and deletes the stored code.
// Returns 1 on success, 0 on mismatch, -1 when no live code exists.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v == false then
  return -1
end
if v ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

const defaultTimeout = 5 * time.Second

// CodeRedis implements usecase.CodeRepository on Redis.
type CodeRedis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

var _ usecase.CodeRepository = (*CodeRedis)(nil)

// NewCodeRedis creates a Redis-backed code store. All keys are namespaced
// under the given prefix. Every call is bounded by timeout; a non-positive
// value falls back to defaultTimeout.
func NewCodeRedis(client *redis.Client, prefix string, timeout time.Duration) *CodeRedis {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CodeRedis{client: client, prefix: prefix, timeout: timeout}
}

func (r *CodeRedis) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *CodeRedis) codeKey(email string) string {
	return fmt.Sprintf("%s:%s", r.prefix, email)
}

// Put stores the code under the email's key with the expiry as TTL. SET
// replaces any previous value and TTL, which is exactly the at-most-one-live-
// code rule.
func (r *CodeRedis) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	return r.client.Set(ctx, r.codeKey(email), code, ttl).Err()
}

// Consume runs the compare-and-delete script. A missing key means the code
// expired, was never requested, or was already consumed by a concurrent
// caller; all of those are the same invalidity to the submitter.
func (r *CodeRedis) Consume(ctx context.Context, email, code string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := consumeScript.Run(ctx, r.client, []string{r.codeKey(email)}, code).Int()
	if err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return usecase.ErrCodeMismatch
	default:
		return usecase.ErrCodeExpired
	}
}

// DeleteExpired is a no-op: Redis TTL already removes expired codes.
func (r *CodeRedis) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
