package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeadseaRepository interface {
	Create(ctx context.Context, update *entity.DeadseaUpdate) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.DeadseaUpdate, error)
	List(ctx context.Context) ([]entity.DeadseaUpdate, error)
	ListReported(ctx context.Context) ([]entity.DeadseaUpdate, error)
}

type deadseaRepository struct {
	db *gorm.DB
}

func NewDeadseaRepository(db *gorm.DB) DeadseaRepository {
	return &deadseaRepository{db: db}
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(entity.PublicColumns)
}

func (r *deadseaRepository) Create(ctx context.Context, update *entity.DeadseaUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *deadseaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DeadseaUpdate, error) {
	var update entity.DeadseaUpdate
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("id = ?", id).
		First(&update).Error
	if err != nil {
		return nil, err
	}
	return &update, nil
}

func (r *deadseaRepository) List(ctx context.Context) ([]entity.DeadseaUpdate, error) {
	var updates []entity.DeadseaUpdate
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Order("created_at desc, id desc").
		Find(&updates).Error
	return updates, err
}

func (r *deadseaRepository) ListReported(ctx context.Context) ([]entity.DeadseaUpdate, error) {
	var updates []entity.DeadseaUpdate
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("is_reported = ?", true).
		Order("created_at desc").
		Find(&updates).Error
	return updates, err
}
