package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/survivehub/internal/entity"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/response"
	"anoa.com/survivehub/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	mw := NewAuthMiddleware(userRepo.NewUserRepository(db), secret)

	member := testutil.CreateUser(t, db, "member")
	admin := testutil.CreateAdmin(t, db, "boss")
	banned := testutil.CreateUser(t, db, "banned")
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", banned.ID).Update("suspended", true).Error)

	router := gin.New()
	router.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		p, err := response.GetPrincipal(c)
		require.NoError(t, err)
		c.String(http.StatusOK, p.UserID.String())
	})
	router.GET("/admin", mw.RequireAuth(), mw.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	issue := func(u *entity.User) string {
		signed, _, err := token.Issue(secret, u.ID, u.Role, time.Hour)
		require.NoError(t, err)
		return signed
	}

	tests := []struct {
		name   string
		path   string
		header string
		query  string
		want   int
	}{
		{name: "missing token", path: "/me", want: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "bearer header", path: "/me", header: "Bearer " + issue(member), want: http.StatusOK},
		{name: "query token", path: "/me", query: issue(member), want: http.StatusOK},
		{name: "suspended user", path: "/me", header: "Bearer " + issue(banned), want: http.StatusForbidden},
		{name: "member on admin route", path: "/admin", header: "Bearer " + issue(member), want: http.StatusForbidden},
		{name: "admin on admin route", path: "/admin", header: "Bearer " + issue(admin), want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.path
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, _, err := token.Issue("other", admin.ID, entity.RoleAdmin, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
