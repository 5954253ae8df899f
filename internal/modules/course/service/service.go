package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	courseDto "anoa.com/survivehub/internal/modules/course/dto"
	courseRepo "anoa.com/survivehub/internal/modules/course/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/media"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/slug"
	"anoa.com/survivehub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mediaFolder = "courses"

var (
	ErrCourseNotFound = fmt.Errorf("course not found: %w", apperror.ErrNotFound)
	ErrModuleNotFound = fmt.Errorf("module not found: %w", apperror.ErrNotFound)
)

type CourseService interface {
	CreateCourse(ctx context.Context, p entity.Principal, req courseDto.CourseRequest, image *dto.FileUpload) (*entity.Course, error)
	ListCourses(ctx context.Context) ([]entity.Course, error)
	GetCourse(ctx context.Context, slug string) (*entity.Course, error)
	UpdateCourse(ctx context.Context, p entity.Principal, slug string, req courseDto.CourseRequest, image *dto.FileUpload) (*entity.Course, error)
	DeleteCourse(ctx context.Context, p entity.Principal, slug string) error

	CreateModule(ctx context.Context, p entity.Principal, courseSlug string, req courseDto.ModuleRequest, video *dto.FileUpload) (*entity.Module, error)
	GetModule(ctx context.Context, slug string, viewer uuid.UUID) (*entity.Module, error)
}

type courseService struct {
	repo    courseRepo.CourseRepository
	content contentService.ContentService
	media   storage.MediaStorage
	log     *zap.SugaredLogger
}

func NewCourseService(repo courseRepo.CourseRepository, content contentService.ContentService, mediaStore storage.MediaStorage, log *zap.SugaredLogger) CourseService {
	return &courseService{
		repo:    repo,
		content: content,
		media:   mediaStore,
		log:     log,
	}
}

func requireAdmin(p entity.Principal) error {
	if !p.IsAdmin() {
		return fmt.Errorf("only admins manage courses: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *courseService) CreateCourse(ctx context.Context, p entity.Principal, req courseDto.CourseRequest, image *dto.FileUpload) (*entity.Course, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	course := &entity.Course{
		AuthorID:    p.UserID,
		Title:       sanitize.Plain(req.Title),
		Description: sanitize.UGC(req.Description),
	}
	if course.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}

	if image != nil {
		asset, err := media.UploadImage(ctx, s.media, image, mediaFolder, media.Cover)
		if err != nil {
			return nil, err
		}
		course.ImageURL = &asset.URL
		course.ImageID = asset.PublicID
	}

	_, err := slug.Assign(course.Title, func(base string) (int64, error) {
		return s.repo.CountSlugs(ctx, base)
	}, func(candidate string) error {
		course.Slug = candidate
		return s.repo.Create(ctx, course)
	})
	if err != nil {
		s.deleteMedia(ctx, course.ImageID, storage.ResourceImage)
		return nil, err
	}

	s.log.Infow("course created", "course_id", course.ID, "slug", course.Slug)
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]entity.Course, error) {
	return s.repo.List(ctx)
}

func (s *courseService) GetCourse(ctx context.Context, slug string) (*entity.Course, error) {
	course, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	return course, err
}

func (s *courseService) UpdateCourse(ctx context.Context, p entity.Principal, slug string, req courseDto.CourseRequest, image *dto.FileUpload) (*entity.Course, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	course, err := s.GetCourse(ctx, slug)
	if err != nil {
		return nil, err
	}

	course.Title = sanitize.Plain(req.Title)
	course.Description = sanitize.UGC(req.Description)

	previous := ""
	if image != nil {
		asset, err := media.UploadImage(ctx, s.media, image, mediaFolder, media.Cover)
		if err != nil {
			return nil, err
		}
		previous = course.ImageID
		course.ImageURL = &asset.URL
		course.ImageID = asset.PublicID
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	s.deleteMedia(ctx, previous, storage.ResourceImage)
	return course, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, p entity.Principal, slug string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}

	course, err := s.GetCourse(ctx, slug)
	if err != nil {
		return err
	}

	moduleIDs, err := s.repo.ModuleIDs(ctx, course.ID)
	if err != nil {
		return err
	}
	if err := s.content.Purge(ctx, entity.KindModule, moduleIDs); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, course.ID); err != nil {
		return err
	}

	s.deleteMedia(ctx, course.ImageID, storage.ResourceImage)
	s.log.Infow("course deleted", "course_id", course.ID, "modules", len(moduleIDs))
	return nil
}

func (s *courseService) CreateModule(ctx context.Context, p entity.Principal, courseSlug string, req courseDto.ModuleRequest, video *dto.FileUpload) (*entity.Module, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	course, err := s.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}

	module := &entity.Module{
		CourseID:    course.ID,
		AuthorID:    p.UserID,
		Title:       sanitize.Plain(req.Title),
		Description: sanitize.UGC(req.Description),
	}
	if module.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}

	if video != nil {
		asset, err := media.UploadVideo(ctx, s.media, video, mediaFolder)
		if err != nil {
			return nil, err
		}
		module.VideoURL = &asset.URL
		module.VideoID = asset.PublicID
	}

	_, err = slug.Assign(module.Title, func(base string) (int64, error) {
		return s.repo.CountModuleSlugs(ctx, base)
	}, func(candidate string) error {
		module.Slug = candidate
		return s.repo.CreateModule(ctx, module)
	})
	if err != nil {
		s.deleteMedia(ctx, module.VideoID, storage.ResourceVideo)
		return nil, err
	}
	return module, nil
}

func (s *courseService) GetModule(ctx context.Context, slug string, viewer uuid.UUID) (*entity.Module, error) {
	module, err := s.repo.FindModuleBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.content.Hydrate(ctx, module, viewer); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *courseService) deleteMedia(ctx context.Context, publicID, resourceType string) {
	if s.media == nil || publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID, resourceType); err != nil {
		s.log.Warnw("media delete failed", "public_id", publicID, "error", err)
	}
}
