package slug

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain words", "Dead Sea Crossing", "dead-sea-crossing"},
		{"punctuation removed", "Survive: Anything!", "survive-anything"},
		{"repeated separators", "  run --  far  ", "run-far"},
		{"only symbols", "!!!", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestDisambiguate(t *testing.T) {
	assert.Equal(t, "runners", Disambiguate("runners", 0))
	assert.Equal(t, "runners-2", Disambiguate("runners", 1))
	assert.Equal(t, "runners-4", Disambiguate("runners", 3))
}

func TestWithRandomSuffix(t *testing.T) {
	s := WithRandomSuffix("runners")
	assert.True(t, strings.HasPrefix(s, "runners-"))
	assert.Len(t, s, len("runners-")+8)
	assert.NotEqual(t, s, WithRandomSuffix("runners"))
}

func TestAssign(t *testing.T) {
	count := func(n int64) func(string) (int64, error) {
		return func(string) (int64, error) { return n, nil }
	}

	t.Run("first use keeps the base", func(t *testing.T) {
		got, err := Assign("Ridge Runners", count(0), func(string) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, "ridge-runners", got)
	})

	t.Run("numbered after existing rows", func(t *testing.T) {
		got, err := Assign("Ridge Runners", count(2), func(string) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, "ridge-runners-3", got)
	})

	t.Run("collision retries with a random suffix", func(t *testing.T) {
		var tried []string
		got, err := Assign("Ridge Runners", count(1), func(s string) error {
			tried = append(tried, s)
			if len(tried) == 1 {
				return gorm.ErrDuplicatedKey
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ridge-runners-2", tried[0])
		assert.True(t, strings.HasPrefix(got, "ridge-runners-"))
		assert.Len(t, got, len("ridge-runners-")+8)
	})

	t.Run("gives up after three collisions", func(t *testing.T) {
		calls := 0
		_, err := Assign("x", count(0), func(string) error {
			calls++
			return gorm.ErrDuplicatedKey
		})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		assert.Equal(t, 3, calls)
	})

	t.Run("other errors stop immediately", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		_, err := Assign("x", count(0), func(string) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
