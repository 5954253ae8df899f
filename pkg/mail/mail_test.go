package mail

import (
	"context"
	"testing"

	"anoa.com/survivehub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	templates, err := parseTemplates()
	require.NoError(t, err)

	t.Run("password reset link is rendered", func(t *testing.T) {
		subject, html, err := render(templates, TemplatePasswordReset, map[string]string{
			"Name":     "Charlie",
			"ResetURL": "https://example.test/reset/abc",
		})
		require.NoError(t, err)
		assert.Equal(t, "Password reset", subject)
		assert.Contains(t, html, "https://example.test/reset/abc")
		assert.Contains(t, html, "Charlie")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, err := render(templates, "nope", nil)
		assert.Error(t, err)
	})
}

func TestLogSender(t *testing.T) {
	s, err := NewLogSender(logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, s.Send(context.Background(), "a@b.test", TemplateInvite, map[string]string{"Key": "k", "RegisterURL": "u"}))
}
