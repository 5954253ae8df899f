// Package testutil opens migrated in-memory databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"anoa.com/survivehub/internal/bootstrap"
	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a fresh, migrated, in-memory sqlite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared-cache database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// CreateUser inserts an active member with a unique username and email.
func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	u := &entity.User{
		Email:             username + "@example.test",
		Username:          username,
		Name:              username,
		PasswordHash:      "x",
		Role:              entity.RoleMember,
		SeenNotifications: true,
		Public:            true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateAdmin inserts a user with the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	u := CreateUser(t, db, username)
	require.NoError(t, db.Model(u).Update("role", entity.RoleAdmin).Error)
	u.Role = entity.RoleAdmin
	return u
}

// CreatePost inserts a post authored by author.
func CreatePost(t *testing.T, db *gorm.DB, author *entity.User, text string) *entity.Post {
	t.Helper()

	p := &entity.Post{AuthorID: author.ID, Text: text}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Reload reads the user row again.
func Reload(t *testing.T, db *gorm.DB, id uuid.UUID) *entity.User {
	t.Helper()

	var u entity.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return &u
}
