package service

import (
	"context"
	"testing"

	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	deadseaDto "anoa.com/survivehub/internal/modules/deadsea/dto"
	deadseaRepo "anoa.com/survivehub/internal/modules/deadsea/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadseaUpdates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	content := contentService.NewContentService(contentRepo.NewContentRepository(db), nil, nil, nil, logger.Nop())
	svc := NewDeadseaService(deadseaRepo.NewDeadseaRepository(db), content, nil)

	admin := testutil.CreateAdmin(t, db, "lead").Principal()
	member := testutil.CreateUser(t, db, "fan").Principal()

	req := deadseaDto.CreateUpdateRequest{
		Text:      "Crossed the salt flats",
		Activity:  "walking",
		Duration:  "6h",
		Longitude: 35.5,
		Latitude:  31.5,
	}

	t.Run("members cannot post", func(t *testing.T) {
		_, err := svc.CreateUpdate(ctx, member, req, nil)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("location survives the round trip", func(t *testing.T) {
		created, err := svc.CreateUpdate(ctx, admin, req, nil)
		require.NoError(t, err)

		got, err := svc.GetUpdate(ctx, created.ID, member.UserID)
		require.NoError(t, err)
		loc := got.Location.Data()
		assert.Equal(t, 35.5, loc.Longitude)
		assert.Equal(t, 31.5, loc.Latitude)
		require.NotNil(t, got.Author)
		assert.Equal(t, "lead", got.Author.Username)
	})

	t.Run("list is newest first with comment counts", func(t *testing.T) {
		second, err := svc.CreateUpdate(ctx, admin, deadseaDto.CreateUpdateRequest{Text: "Reached the shore"}, nil)
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			_, err := content.AddComment(ctx, member, second.Ref(), "go go go")
			require.NoError(t, err)
		}

		updates, err := svc.ListUpdates(ctx)
		require.NoError(t, err)
		require.Len(t, updates, 2)
		assert.Equal(t, second.ID, updates[0].ID)
		assert.EqualValues(t, 2, updates[0].CommentCount)
		assert.Zero(t, updates[1].CommentCount)
	})

	t.Run("unknown update", func(t *testing.T) {
		_, err := svc.GetUpdate(ctx, uuid.New(), member.UserID)
		assert.ErrorIs(t, err, ErrUpdateNotFound)
	})
}
