package service

import (
	"context"
	"testing"

	"anoa.com/survivehub/internal/entity"
	adminDto "anoa.com/survivehub/internal/modules/admin/dto"
	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	courseRepo "anoa.com/survivehub/internal/modules/course/repository"
	deadseaRepo "anoa.com/survivehub/internal/modules/deadsea/repository"
	groupRepo "anoa.com/survivehub/internal/modules/group/repository"
	notifRepo "anoa.com/survivehub/internal/modules/notification/repository"
	postRepo "anoa.com/survivehub/internal/modules/post/repository"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc     AdminService
	content contentService.ContentService
	repos   Repositories
	db      *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := Repositories{
		Users:         userRepo.NewUserRepository(db),
		Posts:         postRepo.NewPostRepository(db),
		Courses:       courseRepo.NewCourseRepository(db),
		Deadsea:       deadseaRepo.NewDeadseaRepository(db),
		Content:       contentRepo.NewContentRepository(db),
		Follows:       socialRepo.NewFollowRepository(db),
		Groups:        groupRepo.NewGroupRepository(db),
		Notifications: notifRepo.NewNotificationRepository(db),
	}
	content := contentService.NewContentService(repos.Content, nil, nil, nil, logger.Nop())
	return fixture{
		svc:     NewAdminService(repos, content, nil, nil, logger.Nop()),
		content: content,
		repos:   repos,
		db:      db,
	}
}

func TestModerationQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "mod").Principal()
	author := testutil.CreateUser(t, f.db, "author")
	r1 := testutil.CreateUser(t, f.db, "r1").Principal()
	r2 := testutil.CreateUser(t, f.db, "r2").Principal()

	clean := testutil.CreatePost(t, f.db, author, "fine")
	bad := testutil.CreatePost(t, f.db, author, "spam")
	ref := bad.Ref()

	require.NoError(t, f.content.Report(ctx, r1, ref))
	require.NoError(t, f.content.Report(ctx, r2, ref))
	require.NoError(t, f.content.Report(ctx, r2, ref))

	t.Run("members cannot see the queue", func(t *testing.T) {
		_, err := f.svc.ListReported(ctx, r1)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("reported items carry distinct reporter counts", func(t *testing.T) {
		items, err := f.svc.ListReported(ctx, admin)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, entity.KindPost, items[0].Kind)
		assert.Equal(t, bad.ID, items[0].ID)
		assert.Equal(t, author.ID, items[0].AuthorID)
		assert.EqualValues(t, 2, items[0].Reporters)
		assert.NotEqual(t, clean.ID, items[0].ID)
	})

	t.Run("mark safe empties the queue", func(t *testing.T) {
		require.NoError(t, f.svc.MarkSafe(ctx, admin, ref))
		items, err := f.svc.ListReported(ctx, admin)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("admin delete removes content", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteContent(ctx, admin, ref))
		assert.ErrorIs(t, f.svc.DeleteContent(ctx, admin, ref), apperror.ErrNotFound)
	})
}

func TestSuspension(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "mod").Principal()
	target := testutil.CreateUser(t, f.db, "target")
	require.NoError(t, f.db.Model(target).Update("online", true).Error)

	t.Run("cannot suspend yourself", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.SuspendUser(ctx, admin, admin.UserID), apperror.ErrBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.SuspendUser(ctx, admin, uuid.New()), apperror.ErrNotFound)
	})

	t.Run("suspend takes the user offline", func(t *testing.T) {
		require.NoError(t, f.svc.SuspendUser(ctx, admin, target.ID))
		got := testutil.Reload(t, f.db, target.ID)
		assert.True(t, got.Suspended)
		assert.False(t, got.Online)

		list, err := f.svc.ListUsers(ctx, admin)
		require.NoError(t, err)
		require.Len(t, list.Suspended, 1)
		assert.Equal(t, target.ID, list.Suspended[0].ID)
		assert.Len(t, list.Active, 1)
	})

	t.Run("unsuspend", func(t *testing.T) {
		require.NoError(t, f.svc.UnsuspendUser(ctx, admin, target.ID))
		assert.False(t, testutil.Reload(t, f.db, target.ID).Suspended)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "mod").Principal()
	target := testutil.CreateUser(t, f.db, "target")
	testutil.CreateUser(t, f.db, "taken")

	t.Run("promote and rename", func(t *testing.T) {
		got, err := f.svc.UpdateUser(ctx, admin, target.ID, adminDto.UpdateUserRequest{Role: entity.RoleAdmin, Name: "New Name"})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, got.Role)
		assert.Equal(t, "New Name", testutil.Reload(t, f.db, target.ID).Name)
	})

	t.Run("username collision", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, admin, target.ID, adminDto.UpdateUserRequest{Username: "taken"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("cannot demote yourself", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, admin, admin.UserID, adminDto.UpdateUserRequest{Role: entity.RoleMember})
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "mod").Principal()
	gone := testutil.CreateUser(t, f.db, "gone")
	other := testutil.CreateUser(t, f.db, "other")

	ownPost := testutil.CreatePost(t, f.db, gone, "mine")
	otherPost := testutil.CreatePost(t, f.db, other, "theirs")

	_, err := f.content.AddComment(ctx, gone.Principal(), otherPost.Ref(), "left behind")
	require.NoError(t, err)
	_, err = f.content.AddComment(ctx, other.Principal(), ownPost.Ref(), "goes with the post")
	require.NoError(t, err)
	_, err = f.repos.Follows.Follow(ctx, gone.ID, other.ID)
	require.NoError(t, err)
	_, err = f.repos.Follows.Follow(ctx, other.ID, gone.ID)
	require.NoError(t, err)
	require.NoError(t, f.repos.Notifications.Create(ctx, &entity.Notification{
		Action:        entity.ActionCommented,
		ActorID:       other.ID,
		Medium:        entity.MediumPost,
		MediumRef:     ownPost.ID,
		MediumOwnerID: gone.ID,
		NotifyID:      gone.ID,
	}))

	require.NoError(t, f.svc.DeleteUser(ctx, admin, gone.ID))

	t.Run("account and posts are gone", func(t *testing.T) {
		_, err := f.repos.Users.FindByID(ctx, gone.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		_, err = f.repos.Posts.FindByID(ctx, ownPost.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("follows and notifications are gone", func(t *testing.T) {
		followers, following, err := f.repos.Follows.Counts(ctx, other.ID)
		require.NoError(t, err)
		assert.Zero(t, followers)
		assert.Zero(t, following)

		n, err := f.repos.Notifications.CountByRecipient(ctx, gone.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("comments on other content stay", func(t *testing.T) {
		comments, err := f.content.ListComments(ctx, otherPost.Ref())
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, gone.ID, comments[0].AuthorID)
		assert.Nil(t, comments[0].Author)
	})

	t.Run("deleting again is not found", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.DeleteUser(ctx, admin, gone.ID), apperror.ErrNotFound)
	})
}
