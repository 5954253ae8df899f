package ratelimit

import (
	"context"
	"fmt"
	"time"

	"anoa.com/survivehub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeComment = "comment"
	ScopePost    = "post"
)

// Error is returned when a user hits a cooldown. It unwraps to apperror.ErrRateLimitExceeded.
type Error struct {
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return apperror.ErrRateLimitExceeded }

// Limiter enforces a per-user cooldown per scope with redis SETNX. A nil redis client allows everything.
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
}

func NewLimiter(rdb *redis.Client, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, window: window}
}

func key(userID uuid.UUID, scope string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), scope)
}

// Allow claims the cooldown slot for userID in scope.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, scope string) error {
	if l == nil || l.rdb == nil || l.window <= 0 {
		return nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, scope), "locked", l.window).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, key(userID, scope)).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return &Error{
		Message:    fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", ttl.Seconds()),
		RetryAfter: ttl,
	}
}

// Clear releases the slot, used when the guarded action fails.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, scope string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, scope)).Err()
}
