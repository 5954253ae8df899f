package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	sponsorDto "anoa.com/survivehub/internal/modules/sponsor/dto"
	sponsorRepo "anoa.com/survivehub/internal/modules/sponsor/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/media"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/slug"
	"anoa.com/survivehub/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mediaFolder = "sponsors"

var ErrSponsorNotFound = fmt.Errorf("sponsor not found: %w", apperror.ErrNotFound)

type SponsorService interface {
	CreateSponsor(ctx context.Context, p entity.Principal, req sponsorDto.SponsorRequest, logo, cover *dto.FileUpload) (*entity.Sponsor, error)
	ListSponsors(ctx context.Context) ([]entity.Sponsor, error)
	GetSponsor(ctx context.Context, slug string) (*entity.Sponsor, error)
	AddDeal(ctx context.Context, p entity.Principal, sponsorSlug string, req sponsorDto.DealRequest, image *dto.FileUpload) (*entity.SponsorDeal, error)
}

type sponsorService struct {
	repo  sponsorRepo.SponsorRepository
	media storage.MediaStorage
	log   *zap.SugaredLogger
}

func NewSponsorService(repo sponsorRepo.SponsorRepository, mediaStore storage.MediaStorage, log *zap.SugaredLogger) SponsorService {
	return &sponsorService{
		repo:  repo,
		media: mediaStore,
		log:   log,
	}
}

func requireAdmin(p entity.Principal) error {
	if !p.IsAdmin() {
		return fmt.Errorf("only admins manage sponsors: %w", apperror.ErrForbidden)
	}
	return nil
}

// upload stores an optional image. A nil file yields no asset.
func (s *sponsorService) upload(ctx context.Context, file *dto.FileUpload, size media.Size) (*storage.Asset, error) {
	if file == nil {
		return nil, nil
	}
	return media.UploadImage(ctx, s.media, file, mediaFolder, size)
}

func (s *sponsorService) CreateSponsor(ctx context.Context, p entity.Principal, req sponsorDto.SponsorRequest, logo, cover *dto.FileUpload) (*entity.Sponsor, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	sponsor := &entity.Sponsor{
		BrandName:    sanitize.Plain(req.BrandName),
		BrandProfile: sanitize.UGC(req.BrandProfile),
	}
	if sponsor.BrandName == "" {
		return nil, fmt.Errorf("brand name is required: %w", apperror.ErrInvalidInput)
	}

	logoAsset, err := s.upload(ctx, logo, media.Logo)
	if err != nil {
		return nil, err
	}
	if logoAsset != nil {
		sponsor.BrandLogo = &logoAsset.URL
		sponsor.BrandLogoID = logoAsset.PublicID
	}

	coverAsset, err := s.upload(ctx, cover, media.Cover)
	if err != nil {
		s.deleteImage(ctx, sponsor.BrandLogoID)
		return nil, err
	}
	if coverAsset != nil {
		sponsor.PageCover = &coverAsset.URL
		sponsor.PageCoverID = coverAsset.PublicID
	}

	_, err = slug.Assign(sponsor.BrandName, func(base string) (int64, error) {
		return s.repo.CountSlugs(ctx, base)
	}, func(candidate string) error {
		sponsor.Slug = candidate
		return s.repo.Create(ctx, sponsor)
	})
	if err != nil {
		s.deleteImage(ctx, sponsor.BrandLogoID)
		s.deleteImage(ctx, sponsor.PageCoverID)
		return nil, err
	}

	s.log.Infow("sponsor created", "sponsor_id", sponsor.ID, "slug", sponsor.Slug)
	return sponsor, nil
}

func (s *sponsorService) ListSponsors(ctx context.Context) ([]entity.Sponsor, error) {
	return s.repo.List(ctx)
}

func (s *sponsorService) GetSponsor(ctx context.Context, slug string) (*entity.Sponsor, error) {
	sponsor, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSponsorNotFound
	}
	return sponsor, err
}

func (s *sponsorService) AddDeal(ctx context.Context, p entity.Principal, sponsorSlug string, req sponsorDto.DealRequest, image *dto.FileUpload) (*entity.SponsorDeal, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	sponsor, err := s.GetSponsor(ctx, sponsorSlug)
	if err != nil {
		return nil, err
	}

	deal := &entity.SponsorDeal{
		SponsorID:   sponsor.ID,
		Title:       sanitize.Plain(req.Title),
		Description: sanitize.UGC(req.Description),
		Code:        sanitize.Plain(req.Code),
		URL:         req.URL,
	}
	if deal.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}

	asset, err := s.upload(ctx, image, media.Deal)
	if err != nil {
		return nil, err
	}
	if asset != nil {
		deal.ImageURL = &asset.URL
		deal.ImageID = asset.PublicID
	}

	if err := s.repo.AddDeal(ctx, deal); err != nil {
		s.deleteImage(ctx, deal.ImageID)
		return nil, err
	}
	return deal, nil
}

func (s *sponsorService) deleteImage(ctx context.Context, publicID string) {
	if s.media == nil || publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID, storage.ResourceImage); err != nil {
		s.log.Warnw("sponsor image delete failed", "public_id", publicID, "error", err)
	}
}
