package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/survivehub/internal/config"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/logger"
	"anoa.com/survivehub/pkg/mail"
	"anoa.com/survivehub/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes(t *testing.T) {
	db := testutil.NewDB(t)
	sender, err := mail.NewLogSender(logger.Nop())
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:           "test",
		AllowedOrigins:   []string{"http://localhost:3000"},
		JWTSecret:        "secret",
		JWTTTL:           time.Hour,
		RateLimitContent: time.Second,
		UsersPageSize:    6,
	}
	srv := NewServer(Deps{Config: cfg, DB: db, Mailer: sender, Log: logger.Nop()})
	member := testutil.CreateUser(t, db, "hiker")

	do := func(method, path, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	tok, _, err := token.Issue("secret", member.ID, member.Role, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"metrics are public", http.MethodGet, "/api/metrics", "", http.StatusOK},
		{"feed needs a token", http.MethodGet, "/api/feed", "", http.StatusUnauthorized},
		{"feed with token", http.MethodGet, "/api/feed", tok, http.StatusOK},
		{"profile with recent posts", http.MethodGet, "/api/users/hiker", tok, http.StatusOK},
		{"unknown profile", http.MethodGet, "/api/users/nobody", tok, http.StatusNotFound},
		{"user directory", http.MethodGet, "/api/users", tok, http.StatusOK},
		{"admin area is admin only", http.MethodGet, "/api/admin/users", tok, http.StatusForbidden},
		{"chat without mongo", http.MethodGet, "/api/chats", tok, http.StatusServiceUnavailable},
		{"downloads without s3", http.MethodGet, "/api/downloads", tok, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(tt.method, tt.path, tt.bearer).Code)
		})
	}
}
