package service

import (
	"context"
	"testing"

	"anoa.com/survivehub/internal/entity"
	notifRepo "anoa.com/survivehub/internal/modules/notification/repository"
	notifService "anoa.com/survivehub/internal/modules/notification/service"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(users []entity.User) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestFollow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	notifs := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, logger.Nop())
	follows := socialRepo.NewFollowRepository(db)
	svc := NewSocialService(follows, userRepo.NewUserRepository(db), notifs, logger.Nop())

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	c := testutil.CreateUser(t, db, "carol")

	_, err := svc.Follow(ctx, c.Principal(), "bob")
	require.NoError(t, err)

	t.Run("follow then unfollow restores both sides", func(t *testing.T) {
		followingBefore, err := svc.Following(ctx, "alice")
		require.NoError(t, err)
		followersBefore, err := svc.Followers(ctx, "bob")
		require.NoError(t, err)

		following, err := svc.Follow(ctx, a.Principal(), "bob")
		require.NoError(t, err)
		assert.True(t, following)

		followers, err := svc.Followers(ctx, "bob")
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{a.ID, c.ID}, ids(followers))

		following, err = svc.Unfollow(ctx, a.Principal(), "bob")
		require.NoError(t, err)
		assert.False(t, following)

		followingAfter, err := svc.Following(ctx, "alice")
		require.NoError(t, err)
		followersAfter, err := svc.Followers(ctx, "bob")
		require.NoError(t, err)
		assert.ElementsMatch(t, ids(followingBefore), ids(followingAfter))
		assert.ElementsMatch(t, ids(followersBefore), ids(followersAfter))
	})

	t.Run("double follow is one edge and one notification", func(t *testing.T) {
		require.NoError(t, notifs.Clear(ctx, b.Principal()))

		for i := 0; i < 2; i++ {
			_, err := svc.Follow(ctx, a.Principal(), "bob")
			require.NoError(t, err)
		}

		followers, following, err := follows.Counts(ctx, b.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, followers)
		assert.Zero(t, following)

		list, err := notifs.List(ctx, b.Principal())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, entity.ActionFollowed, list[0].Action)
		assert.Equal(t, a.ID, list[0].ActorID)
	})

	t.Run("unfollow when not following is a no-op", func(t *testing.T) {
		_, err := svc.Unfollow(ctx, b.Principal(), "carol")
		require.NoError(t, err)
	})

	t.Run("self follow is rejected", func(t *testing.T) {
		_, err := svc.Follow(ctx, a.Principal(), "alice")
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Follow(ctx, a.Principal(), "nobody")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
