package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	deadseaDto "anoa.com/survivehub/internal/modules/deadsea/dto"
	deadseaRepo "anoa.com/survivehub/internal/modules/deadsea/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/media"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrUpdateNotFound = fmt.Errorf("update not found: %w", apperror.ErrNotFound)

// DeadseaService publishes expedition progress reports.
type DeadseaService interface {
	CreateUpdate(ctx context.Context, p entity.Principal, req deadseaDto.CreateUpdateRequest, image *dto.FileUpload) (*entity.DeadseaUpdate, error)
	ListUpdates(ctx context.Context) ([]entity.DeadseaUpdate, error)
	GetUpdate(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*entity.DeadseaUpdate, error)
}

type deadseaService struct {
	repo    deadseaRepo.DeadseaRepository
	content contentService.ContentService
	media   storage.MediaStorage
}

func NewDeadseaService(repo deadseaRepo.DeadseaRepository, content contentService.ContentService, mediaStore storage.MediaStorage) DeadseaService {
	return &deadseaService{
		repo:    repo,
		content: content,
		media:   mediaStore,
	}
}

func (s *deadseaService) CreateUpdate(ctx context.Context, p entity.Principal, req deadseaDto.CreateUpdateRequest, image *dto.FileUpload) (*entity.DeadseaUpdate, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("only admins post expedition updates: %w", apperror.ErrForbidden)
	}

	update := &entity.DeadseaUpdate{
		AuthorID: p.UserID,
		Text:     sanitize.UGC(req.Text),
		Activity: sanitize.Plain(req.Activity),
		Duration: sanitize.Plain(req.Duration),
		Location: datatypes.NewJSONType(entity.Coordinates{
			Longitude: req.Longitude,
			Latitude:  req.Latitude,
		}),
	}
	if update.Text == "" {
		return nil, fmt.Errorf("text is required: %w", apperror.ErrInvalidInput)
	}

	if image != nil {
		asset, err := media.UploadImage(ctx, s.media, image, "deadsea", media.Cover)
		if err != nil {
			return nil, err
		}
		update.ImageURL = &asset.URL
		update.ImageID = asset.PublicID
	}

	if err := s.repo.Create(ctx, update); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, update.ID)
}

func (s *deadseaService) ListUpdates(ctx context.Context) ([]entity.DeadseaUpdate, error) {
	updates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(updates))
	for i := range updates {
		ids[i] = updates[i].ID
	}
	counts, err := s.content.CountComments(ctx, entity.KindDeadseaUpdate, ids)
	if err != nil {
		return nil, err
	}
	for i := range updates {
		updates[i].CommentCount = counts[updates[i].ID]
	}
	return updates, nil
}

func (s *deadseaService) GetUpdate(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*entity.DeadseaUpdate, error) {
	update, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUpdateNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.content.Hydrate(ctx, update, viewer); err != nil {
		return nil, err
	}
	update.CommentCount = int64(len(update.Comments))
	return update, nil
}
