package service

import (
	"context"
	"testing"

	"anoa.com/survivehub/internal/entity"
	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	courseDto "anoa.com/survivehub/internal/modules/course/dto"
	courseRepo "anoa.com/survivehub/internal/modules/course/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (CourseService, contentService.ContentService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	content := contentService.NewContentService(contentRepo.NewContentRepository(db), nil, nil, nil, logger.Nop())
	return NewCourseService(courseRepo.NewCourseRepository(db), content, nil, logger.Nop()), content, db
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	svc, content, db := newService(t)
	admin := testutil.CreateAdmin(t, db, "coach").Principal()
	member := testutil.CreateUser(t, db, "student").Principal()

	t.Run("members cannot create", func(t *testing.T) {
		_, err := svc.CreateCourse(ctx, member, courseDto.CourseRequest{Title: "Ropes"}, nil)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("identical titles get distinct slugs", func(t *testing.T) {
		first, err := svc.CreateCourse(ctx, admin, courseDto.CourseRequest{Title: "Desert Survival"}, nil)
		require.NoError(t, err)
		second, err := svc.CreateCourse(ctx, admin, courseDto.CourseRequest{Title: "Desert Survival"}, nil)
		require.NoError(t, err)

		assert.Equal(t, "desert-survival", first.Slug)
		assert.Equal(t, "desert-survival-2", second.Slug)
	})

	t.Run("modules are numbered in order", func(t *testing.T) {
		course, err := svc.CreateCourse(ctx, admin, courseDto.CourseRequest{Title: "Knots"}, nil)
		require.NoError(t, err)

		for _, title := range []string{"Bowline", "Clove hitch", "Figure eight"} {
			_, err := svc.CreateModule(ctx, admin, course.Slug, courseDto.ModuleRequest{Title: title}, nil)
			require.NoError(t, err)
		}

		got, err := svc.GetCourse(ctx, course.Slug)
		require.NoError(t, err)
		require.Len(t, got.Modules, 3)
		for i, m := range got.Modules {
			assert.Equal(t, i+1, m.Step)
		}
		assert.Equal(t, "bowline", got.Modules[0].Slug)
	})

	t.Run("module for unknown course", func(t *testing.T) {
		_, err := svc.CreateModule(ctx, admin, "nope", courseDto.ModuleRequest{Title: "x"}, nil)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("update keeps the slug", func(t *testing.T) {
		course, err := svc.CreateCourse(ctx, admin, courseDto.CourseRequest{Title: "Water"}, nil)
		require.NoError(t, err)

		updated, err := svc.UpdateCourse(ctx, admin, course.Slug, courseDto.CourseRequest{Title: "Finding Water", Description: "wells"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Finding Water", updated.Title)
		assert.Equal(t, "water", updated.Slug)
	})

	t.Run("delete cascades to modules and their comments", func(t *testing.T) {
		course, err := svc.CreateCourse(ctx, admin, courseDto.CourseRequest{Title: "Fire"}, nil)
		require.NoError(t, err)
		module, err := svc.CreateModule(ctx, admin, course.Slug, courseDto.ModuleRequest{Title: "Flint"}, nil)
		require.NoError(t, err)
		_, err = content.AddComment(ctx, member, module.Ref(), "sparks!")
		require.NoError(t, err)

		loaded, err := svc.GetModule(ctx, module.Slug, member.UserID)
		require.NoError(t, err)
		assert.Len(t, loaded.Comments, 1)

		require.NoError(t, svc.DeleteCourse(ctx, admin, course.Slug))

		_, err = svc.GetCourse(ctx, course.Slug)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		_, err = svc.GetModule(ctx, module.Slug, member.UserID)
		assert.ErrorIs(t, err, ErrModuleNotFound)

		var orphans int64
		require.NoError(t, db.Model(&entity.Comment{}).Where("content_id = ?", module.ID).Count(&orphans).Error)
		assert.Zero(t, orphans)
	})
}
