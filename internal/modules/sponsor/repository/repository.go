package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SponsorRepository interface {
	CountSlugs(ctx context.Context, base string) (int64, error)
	Create(ctx context.Context, sponsor *entity.Sponsor) error
	FindBySlug(ctx context.Context, slug string) (*entity.Sponsor, error)
	List(ctx context.Context) ([]entity.Sponsor, error)
	AddDeal(ctx context.Context, deal *entity.SponsorDeal) error
}

type sponsorRepository struct {
	db *gorm.DB
}

func NewSponsorRepository(db *gorm.DB) SponsorRepository {
	return &sponsorRepository{db: db}
}

func (r *sponsorRepository) CountSlugs(ctx context.Context, base string) (int64, error) {
	return database.CountSlugs(r.db.WithContext(ctx), &entity.Sponsor{}, base)
}

func (r *sponsorRepository) Create(ctx context.Context, sponsor *entity.Sponsor) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sponsor).Error
}

func (r *sponsorRepository) FindBySlug(ctx context.Context, slug string) (*entity.Sponsor, error) {
	var sponsor entity.Sponsor
	err := r.db.WithContext(ctx).
		Preload("Deals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Where("slug = ?", slug).
		First(&sponsor).Error
	if err != nil {
		return nil, err
	}
	return &sponsor, nil
}

func (r *sponsorRepository) List(ctx context.Context) ([]entity.Sponsor, error) {
	var sponsors []entity.Sponsor
	err := r.db.WithContext(ctx).Order("brand_name asc").Find(&sponsors).Error
	return sponsors, err
}

func (r *sponsorRepository) AddDeal(ctx context.Context, deal *entity.SponsorDeal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}
