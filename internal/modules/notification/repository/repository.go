package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	// Create inserts the notification and clears the recipient's seen flag in one transaction.
	Create(ctx context.Context, notification *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	ListByRecipient(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	CountByRecipient(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByRecipient(ctx context.Context, userID uuid.UUID) error
	SetSeen(ctx context.Context, userID uuid.UUID, seen bool) error
	IsSeen(ctx context.Context, userID uuid.UUID) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(entity.PublicColumns)
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return tx.Model(&entity.User{}).
			Where("id = ?", notification.NotifyID).
			Update("seen_notifications", false).Error
	})
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor", publicUser).
		Preload("MediumOwner", publicUser).
		Where("id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Where("notify_id = ?", userID).
		Order("created_at desc, id desc").
		Preload("Actor", publicUser).
		Preload("MediumOwner", publicUser).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountByRecipient(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("notify_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *notificationRepository) DeleteByRecipient(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("notify_id = ?", userID).Delete(&entity.Notification{}).Error
}

func (r *notificationRepository) SetSeen(ctx context.Context, userID uuid.UUID, seen bool) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", userID).Update("seen_notifications", seen).Error
}

func (r *notificationRepository) IsSeen(ctx context.Context, userID uuid.UUID) (bool, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Select("id", "seen_notifications").Where("id = ?", userID).First(&u).Error; err != nil {
		return false, err
	}
	return u.SeenNotifications, nil
}
