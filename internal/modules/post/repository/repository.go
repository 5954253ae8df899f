package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	// Feed lists posts by any of authorIDs, newest first.
	Feed(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]entity.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]entity.Post, error)
	IDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
	ListReported(ctx context.Context) ([]entity.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(entity.PublicColumns)
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Feed(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]entity.Post, int64, error) {
	var (
		posts []entity.Post
		total int64
	)
	if len(authorIDs) == 0 {
		return posts, 0, nil
	}

	if err := r.db.WithContext(ctx).Model(&entity.Post{}).Where("author_id IN ?", authorIDs).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("author_id IN ?", authorIDs).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]entity.Post, error) {
	var posts []entity.Post
	q := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("author_id = ?", authorID).
		Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&posts).Error
	return posts, err
}

func (r *postRepository) IDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Post{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, err
}

func (r *postRepository) ListReported(ctx context.Context) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("is_reported = ?", true).
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}
