package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/survivehub/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLimiter(rdb, window), mr
}

func TestLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("second call inside the window is rejected", func(t *testing.T) {
		l, _ := newLimiter(t, 5*time.Second)
		user := uuid.New()

		require.NoError(t, l.Allow(ctx, user, ScopeComment))

		err := l.Allow(ctx, user, ScopeComment)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))

		var limited *Error
		require.True(t, errors.As(err, &limited))
		assert.Greater(t, limited.RetryAfter, time.Duration(0))
		assert.LessOrEqual(t, limited.RetryAfter, 5*time.Second)
	})

	t.Run("scopes and users are independent", func(t *testing.T) {
		l, _ := newLimiter(t, 5*time.Second)
		user := uuid.New()

		require.NoError(t, l.Allow(ctx, user, ScopeComment))
		assert.NoError(t, l.Allow(ctx, user, ScopePost))
		assert.NoError(t, l.Allow(ctx, uuid.New(), ScopeComment))
	})

	t.Run("clear releases the slot", func(t *testing.T) {
		l, _ := newLimiter(t, 5*time.Second)
		user := uuid.New()

		require.NoError(t, l.Allow(ctx, user, ScopeComment))
		require.NoError(t, l.Clear(ctx, user, ScopeComment))
		assert.NoError(t, l.Allow(ctx, user, ScopeComment))
	})

	t.Run("slot expires with the window", func(t *testing.T) {
		l, mr := newLimiter(t, 5*time.Second)
		user := uuid.New()

		require.NoError(t, l.Allow(ctx, user, ScopePost))
		mr.FastForward(6 * time.Second)
		assert.NoError(t, l.Allow(ctx, user, ScopePost))
	})

	t.Run("nil client allows everything", func(t *testing.T) {
		l := NewLimiter(nil, 5*time.Second)
		user := uuid.New()
		for i := 0; i < 3; i++ {
			assert.NoError(t, l.Allow(ctx, user, ScopeComment))
		}

		var nilLimiter *Limiter
		assert.NoError(t, nilLimiter.Allow(ctx, user, ScopeComment))
		assert.NoError(t, nilLimiter.Clear(ctx, user, ScopeComment))
	})
}
