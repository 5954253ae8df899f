package service

import (
	"context"
	"sync"
	"testing"

	"anoa.com/survivehub/internal/entity"
	groupDto "anoa.com/survivehub/internal/modules/group/dto"
	groupRepo "anoa.com/survivehub/internal/modules/group/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (GroupService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewGroupService(groupRepo.NewGroupRepository(db), userRepo.NewUserRepository(db), nil, logger.Nop()), db
}

func TestMembership(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	author := testutil.CreateUser(t, db, "author").Principal()
	joiner := testutil.CreateUser(t, db, "joiner").Principal()

	group, err := svc.CreateGroup(ctx, author, groupDto.CreateGroupRequest{Name: "Night Hikers"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "night-hikers", group.Slug)

	t.Run("author is the first member", func(t *testing.T) {
		got, err := svc.GetGroup(ctx, group.Slug, joiner)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
		assert.Equal(t, author.UserID, got.Members[0].ID)
	})

	t.Run("join is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			member, err := svc.JoinGroup(ctx, joiner, group.Slug)
			require.NoError(t, err)
			assert.True(t, member)
		}
		got, err := svc.GetGroup(ctx, group.Slug, joiner)
		require.NoError(t, err)
		assert.EqualValues(t, 2, got.MemberCount)
	})

	t.Run("concurrent joins add each user once", func(t *testing.T) {
		var users []entity.Principal
		for i := 0; i < 5; i++ {
			users = append(users, testutil.CreateUser(t, db, "crowd"+uuid.NewString()[:6]).Principal())
		}

		var wg sync.WaitGroup
		for _, u := range users {
			for j := 0; j < 2; j++ {
				wg.Add(1)
				go func(p entity.Principal) {
					defer wg.Done()
					_, err := svc.JoinGroup(ctx, p, group.Slug)
					assert.NoError(t, err)
				}(u)
			}
		}
		wg.Wait()

		got, err := svc.GetGroup(ctx, group.Slug, joiner)
		require.NoError(t, err)
		assert.EqualValues(t, 7, got.MemberCount)
	})

	t.Run("leave is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			member, err := svc.LeaveGroup(ctx, joiner, group.Slug)
			require.NoError(t, err)
			assert.False(t, member)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := svc.JoinGroup(ctx, joiner, "missing")
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})
}

func TestPrivateGroups(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	author := testutil.CreateUser(t, db, "author").Principal()
	outsider := testutil.CreateUser(t, db, "outsider").Principal()
	admin := testutil.CreateAdmin(t, db, "root").Principal()

	_, err := svc.CreateGroup(ctx, author, groupDto.CreateGroupRequest{Name: "Open"}, nil)
	require.NoError(t, err)
	secret, err := svc.CreateGroup(ctx, author, groupDto.CreateGroupRequest{Name: "Inner Circle", Private: true}, nil)
	require.NoError(t, err)

	t.Run("hidden from outsiders", func(t *testing.T) {
		groups, err := svc.ListGroups(ctx, outsider)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "open", groups[0].Slug)

		_, err = svc.GetGroup(ctx, secret.Slug, outsider)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		_, err = svc.JoinGroup(ctx, outsider, secret.Slug)
		assert.ErrorIs(t, err, ErrPrivateGroup)
	})

	t.Run("visible to members and admins", func(t *testing.T) {
		groups, err := svc.ListGroups(ctx, author)
		require.NoError(t, err)
		assert.Len(t, groups, 2)

		_, err = svc.GetGroup(ctx, secret.Slug, admin)
		assert.NoError(t, err)
	})

	t.Run("author invites", func(t *testing.T) {
		_, err := svc.AddMember(ctx, outsider, secret.Slug, outsider.UserID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		added, err := svc.AddMember(ctx, author, secret.Slug, outsider.UserID)
		require.NoError(t, err)
		assert.True(t, added)

		_, err = svc.GetGroup(ctx, secret.Slug, outsider)
		assert.NoError(t, err)
	})
}

func TestDiscussions(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	author := testutil.CreateUser(t, db, "author").Principal()
	member := testutil.CreateUser(t, db, "member").Principal()
	stranger := testutil.CreateUser(t, db, "stranger").Principal()

	group, err := svc.CreateGroup(ctx, author, groupDto.CreateGroupRequest{Name: "Gear Talk"}, nil)
	require.NoError(t, err)
	_, err = svc.JoinGroup(ctx, member, group.Slug)
	require.NoError(t, err)

	t.Run("non members cannot start one", func(t *testing.T) {
		_, err := svc.CreateDiscussion(ctx, stranger, group.Slug, groupDto.CreateDiscussionRequest{Title: "hi"})
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("responses append in order", func(t *testing.T) {
		d, err := svc.CreateDiscussion(ctx, member, group.Slug, groupDto.CreateDiscussionRequest{Title: "Best stove?", Body: "ideas"})
		require.NoError(t, err)

		for _, text := range []string{"gas", "alcohol", "wood"} {
			_, err := svc.AddResponse(ctx, author, d.ID, text)
			require.NoError(t, err)
		}

		got, err := svc.GetDiscussion(ctx, d.ID, stranger)
		require.NoError(t, err)
		require.Len(t, got.Responses, 3)
		assert.Equal(t, "gas", got.Responses[0].Text)
		assert.Equal(t, "wood", got.Responses[2].Text)
		require.NotNil(t, got.Responses[0].Author)
		assert.Equal(t, "author", got.Responses[0].Author.Username)
	})

	t.Run("unknown discussion", func(t *testing.T) {
		_, err := svc.AddResponse(ctx, member, uuid.New(), "hello")
		assert.ErrorIs(t, err, ErrDiscussionNotFound)
	})

	t.Run("delete cascades", func(t *testing.T) {
		_, err := svc.CreateDiscussion(ctx, member, group.Slug, groupDto.CreateDiscussionRequest{Title: "Tents"})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.DeleteGroup(ctx, member, group.Slug), apperror.ErrForbidden)
		require.NoError(t, svc.DeleteGroup(ctx, author, group.Slug))

		for _, model := range []interface{}{&entity.Discussion{}, &entity.Response{}, &entity.GroupMember{}} {
			var n int64
			require.NoError(t, db.Model(model).Count(&n).Error)
			assert.Zero(t, n)
		}
		_, err = svc.GetGroup(ctx, group.Slug, author)
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})
}
