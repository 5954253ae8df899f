package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	a, err := Hex(20)
	require.NoError(t, err)
	b, err := Hex(20)
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
}

func TestIssueParse(t *testing.T) {
	id := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		signed, exp, err := Issue("secret", id, "admin", time.Hour)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

		claims, err := Parse("secret", signed)
		require.NoError(t, err)
		assert.Equal(t, id.String(), claims.Subject)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed, _, err := Issue("secret", id, "member", time.Hour)
		require.NoError(t, err)

		_, err = Parse("other", signed)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		signed, _, err := Issue("secret", id, "member", -time.Minute)
		require.NoError(t, err)

		_, err = Parse("secret", signed)
		assert.Error(t, err)
	})
}
