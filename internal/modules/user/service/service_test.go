package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"anoa.com/survivehub/internal/entity"
	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	postRepo "anoa.com/survivehub/internal/modules/post/repository"
	postService "anoa.com/survivehub/internal/modules/post/service"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	"anoa.com/survivehub/internal/modules/user/dto"
	"anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"anoa.com/survivehub/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to       string
	template string
	data     map[string]string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, templateName string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, _ := data.(map[string]string)
	m.sent = append(m.sent, sentMail{to: to, template: templateName, data: d})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

var testOptions = Options{
	JWTSecret:           "test-secret",
	JWTTTL:              time.Hour,
	ResetTokenTTL:       time.Hour,
	EmailChangeTokenTTL: time.Hour,
	PublicBaseURL:       "https://hub.test",
	UsersPageSize:       6,
}

type fixture struct {
	db      *gorm.DB
	mailer  *fakeMailer
	users   repository.UserRepository
	auth    AuthService
	account AccountService
	dir     DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mailer := &fakeMailer{}
	users := repository.NewUserRepository(db)
	follows := socialRepo.NewFollowRepository(db)
	content := contentService.NewContentService(contentRepo.NewContentRepository(db), nil, nil, nil, logger.Nop())
	posts := postService.NewPostService(postRepo.NewPostRepository(db), follows, content, nil, nil)

	return &fixture{
		db:      db,
		mailer:  mailer,
		users:   users,
		auth:    NewAuthService(users, repository.NewInviteRepository(db), mailer, nil, nil, testOptions, logger.Nop()),
		account: NewAccountService(users, mailer, nil, nil, testOptions, logger.Nop()),
		dir:     NewDirectoryService(users, follows, posts, nil, testOptions.UsersPageSize, logger.Nop()),
	}
}

// register walks the invite flow and returns the new user.
func (f *fixture) register(t *testing.T, username, password string) *entity.User {
	t.Helper()
	ctx := context.Background()
	admin := entity.Principal{UserID: testutil.CreateAdmin(t, f.db, "admin-"+username).ID, Role: entity.RoleAdmin}
	email := username + "@trail.test"

	require.NoError(t, f.auth.CreateInvite(ctx, admin, email))
	key := f.mailer.last().data["Key"]
	require.NotEmpty(t, key)

	user, err := f.auth.Register(ctx, dto.RegisterInput{
		Key:             key,
		Name:            "Name " + username,
		Username:        username,
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	return user
}

func TestInvites(t *testing.T) {
	ctx := context.Background()

	t.Run("request then approve", func(t *testing.T) {
		f := newFixture(t)
		admin := testutil.CreateAdmin(t, f.db, "root")

		require.NoError(t, f.auth.RequestInvite(ctx, "New@Trail.test"))
		assert.ErrorIs(t, f.auth.RequestInvite(ctx, "new@trail.test"), apperror.ErrConflict)

		requests, err := f.auth.ListInviteRequests(ctx, admin.Principal())
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "new@trail.test", requests[0].Email)

		require.NoError(t, f.auth.ApproveInvite(ctx, admin.Principal(), "new@trail.test"))
		sent := f.mailer.last()
		assert.Equal(t, "new@trail.test", sent.to)
		assert.Len(t, sent.data["Key"], 40)

		requests, err = f.auth.ListInviteRequests(ctx, admin.Principal())
		require.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("existing user cannot request", func(t *testing.T) {
		f := newFixture(t)
		u := testutil.CreateUser(t, f.db, "taken")
		assert.ErrorIs(t, f.auth.RequestInvite(ctx, u.Email), apperror.ErrConflict)
	})

	t.Run("members cannot approve", func(t *testing.T) {
		f := newFixture(t)
		u := testutil.CreateUser(t, f.db, "member")
		assert.ErrorIs(t, f.auth.ApproveInvite(ctx, u.Principal(), "x@trail.test"), apperror.ErrForbidden)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a member with the seen flag set", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t, "walker", "password1")

		stored := testutil.Reload(t, f.db, user.ID)
		assert.Equal(t, entity.RoleMember, stored.Role)
		assert.True(t, stored.SeenNotifications)
		assert.NotEqual(t, "password1", stored.PasswordHash)
	})

	t.Run("wrong key", func(t *testing.T) {
		f := newFixture(t)
		admin := testutil.CreateAdmin(t, f.db, "root")
		require.NoError(t, f.auth.CreateInvite(ctx, admin.Principal(), "k@trail.test"))

		_, err := f.auth.Register(ctx, dto.RegisterInput{
			Key: "nope", Name: "K", Username: "kay", Email: "k@trail.test",
			Password: "password1", PasswordConfirm: "password1",
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("password confirmation must match", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, dto.RegisterInput{
			Key: "k", Name: "K", Username: "kay", Email: "k@trail.test",
			Password: "password1", PasswordConfirm: "password2",
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture(t)
		testutil.CreateUser(t, f.db, "dup")
		admin := testutil.CreateAdmin(t, f.db, "root")
		require.NoError(t, f.auth.CreateInvite(ctx, admin.Principal(), "fresh@trail.test"))

		_, err := f.auth.Register(ctx, dto.RegisterInput{
			Key: f.mailer.last().data["Key"], Name: "D", Username: "dup", Email: "fresh@trail.test",
			Password: "password1", PasswordConfirm: "password1",
		})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token and marks online", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t, "walker", "password1")

		resp, err := f.auth.Login(ctx, dto.LoginInput{Email: user.Email, Password: "password1"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := token.Parse(testOptions.JWTSecret, resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.Equal(t, entity.RoleMember, claims.Role)
		assert.True(t, testutil.Reload(t, f.db, user.ID).Online)

		require.NoError(t, f.auth.Logout(ctx, user.Principal()))
		assert.False(t, testutil.Reload(t, f.db, user.ID).Online)
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t, "walker", "password1")

		_, err := f.auth.Login(ctx, dto.LoginInput{Email: user.Email, Password: "wrong-one"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		_, err = f.auth.Login(ctx, dto.LoginInput{Email: "ghost@trail.test", Password: "password1"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("suspended account gets no token", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t, "walker", "password1")
		require.NoError(t, f.db.Model(&entity.User{}).Where("id = ?", user.ID).Update("suspended", true).Error)

		resp, err := f.auth.Login(ctx, dto.LoginInput{Email: user.Email, Password: "password1"})
		assert.ErrorIs(t, err, apperror.ErrSuspended)
		assert.Nil(t, resp)
		assert.False(t, testutil.Reload(t, f.db, user.ID).Online)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.register(t, "walker", "password1")

	t.Run("unknown email is silent", func(t *testing.T) {
		sent := len(f.mailer.sent)
		require.NoError(t, f.auth.ForgotPassword(ctx, "ghost@trail.test"))
		assert.Len(t, f.mailer.sent, sent)
	})

	t.Run("token resets the password once", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, user.Email))
		stored := testutil.Reload(t, f.db, user.ID)
		require.NotNil(t, stored.ResetPasswordToken)
		resetToken := *stored.ResetPasswordToken
		assert.Contains(t, f.mailer.last().data["ResetURL"], resetToken)

		input := dto.ResetPasswordInput{Password: "password2", PasswordConfirm: "password2"}
		require.NoError(t, f.auth.ResetPassword(ctx, resetToken, input))
		assert.ErrorIs(t, f.auth.ResetPassword(ctx, resetToken, input), apperror.ErrNotFound)

		_, err := f.auth.Login(ctx, dto.LoginInput{Email: user.Email, Password: "password2"})
		assert.NoError(t, err)
	})

	t.Run("expired tokens are swept", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, user.Email))
		past := time.Now().Add(-time.Minute)
		require.NoError(t, f.db.Model(&entity.User{}).Where("id = ?", user.ID).Update("reset_password_expires", past).Error)

		cleared, err := f.auth.SweepExpiredTokens(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, cleared)
		assert.Nil(t, testutil.Reload(t, f.db, user.ID).ResetPasswordToken)
	})
}

func TestAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("change password requires the current one", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t, "walker", "password1")

		err := f.account.ChangePassword(ctx, user.Principal(), dto.ChangePasswordInput{
			CurrentPassword: "nope", Password: "password2", PasswordConfirm: "password2",
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)

		require.NoError(t, f.account.ChangePassword(ctx, user.Principal(), dto.ChangePasswordInput{
			CurrentPassword: "password1", Password: "password2", PasswordConfirm: "password2",
		}))
	})

	t.Run("profile update with email change", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t, "walker", "password1")
		testutil.CreateUser(t, f.db, "other")

		input := dto.UpdateProfileInput{
			Name: "Walker", Username: "other", Email: user.Email, Bio: "<b>hi</b><script>x</script>",
		}
		_, err := f.account.UpdateProfile(ctx, user.Principal(), input)
		assert.ErrorIs(t, err, apperror.ErrConflict)

		input.Username = "walker2"
		input.Email = "new@trail.test"
		updated, err := f.account.UpdateProfile(ctx, user.Principal(), input)
		require.NoError(t, err)
		assert.Equal(t, "<b>hi</b>", updated.Bio)
		assert.Equal(t, user.Email, testutil.Reload(t, f.db, user.ID).Email)

		sent := f.mailer.last()
		assert.Equal(t, "new@trail.test", sent.to)

		stored := testutil.Reload(t, f.db, user.ID)
		require.NotNil(t, stored.EmailChangeToken)
		confirmed, err := f.account.ConfirmEmailChange(ctx, *stored.EmailChangeToken)
		require.NoError(t, err)
		assert.Equal(t, "new@trail.test", confirmed.Email)
		assert.Nil(t, testutil.Reload(t, f.db, user.ID).EmailChangeToken)
	})

	t.Run("avatar without storage", func(t *testing.T) {
		f := newFixture(t)
		user := testutil.CreateUser(t, f.db, "walker")
		_, err := f.account.UpdateAvatar(ctx, user.Principal(), nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var users []*entity.User
	for _, name := range []string{"ana", "ben", "cara", "dan", "eve", "finn", "gus"} {
		users = append(users, testutil.CreateUser(t, f.db, name))
	}

	t.Run("paginates six per page", func(t *testing.T) {
		first, err := f.dir.ListUsers(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, first.Data, 6)
		assert.EqualValues(t, 7, first.Meta.TotalItems)
		assert.EqualValues(t, 2, first.Meta.TotalPages)

		second, err := f.dir.ListUsers(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, second.Data, 1)
	})

	t.Run("search falls back to the database", func(t *testing.T) {
		found, err := f.dir.SearchUsers(ctx, "CAR")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "cara", found[0].Username)
	})

	t.Run("profile counts and follow state", func(t *testing.T) {
		follows := socialRepo.NewFollowRepository(f.db)
		_, err := follows.Follow(ctx, users[0].ID, users[1].ID)
		require.NoError(t, err)
		testutil.CreatePost(t, f.db, users[1], "trail notes")

		profile, err := f.dir.GetProfile(ctx, "ben", users[0].Principal())
		require.NoError(t, err)
		assert.EqualValues(t, 1, profile.FollowerCount)
		assert.True(t, profile.Following)
		assert.Empty(t, profile.User.Email)
		require.Len(t, profile.Posts, 1)

		_, err = f.dir.GetProfile(ctx, "nobody", users[0].Principal())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
