package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the follow graph as one row per edge.
type FollowRepository interface {
	// Follow and Unfollow report whether the edge changed.
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID) ([]entity.User, error)
	Following(ctx context.Context, userID uuid.UUID) ([]entity.User, error)
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Counts(ctx context.Context, userID uuid.UUID) (followers int64, following int64, err error)
	DeleteAllFor(ctx context.Context, userID uuid.UUID) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.Follow{FollowerID: followerID, FolloweeID: followeeID})
	return res.RowsAffected == 1, res.Error
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&entity.Follow{})
	return res.RowsAffected == 1, res.Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Followers(ctx context.Context, userID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	db := r.db.WithContext(ctx)
	err := db.
		Select(entity.PublicColumns).
		Where("id IN (?)", db.Model(&entity.Follow{}).Select("follower_id").Where("followee_id = ?", userID)).
		Order("username asc").
		Find(&users).Error
	return users, err
}

func (r *followRepository) Following(ctx context.Context, userID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	db := r.db.WithContext(ctx)
	err := db.
		Select(entity.PublicColumns).
		Where("id IN (?)", db.Model(&entity.Follow{}).Select("followee_id").Where("follower_id = ?", userID)).
		Order("username asc").
		Find(&users).Error
	return users, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) Counts(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

func (r *followRepository) DeleteAllFor(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? OR followee_id = ?", userID, userID).
		Delete(&entity.Follow{}).Error
}
