package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUGC(t *testing.T) {
	t.Run("drops script", func(t *testing.T) {
		assert.Equal(t, "hello", UGC(`<script>alert(1)</script>hello`))
	})

	t.Run("keeps emphasis", func(t *testing.T) {
		assert.Equal(t, "<b>hi</b>", UGC("  <b>hi</b>  "))
	})

	t.Run("blank stays blank", func(t *testing.T) {
		assert.Empty(t, UGC("   "))
	})
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "hi there", Plain("<i>hi</i> there"))
}
