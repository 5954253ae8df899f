package repository

import (
	"context"
	"strings"
	"time"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string) (*entity.User, error)
	FindByEmailChangeToken(ctx context.Context, token string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, limit, offset int) ([]entity.User, int64, error)
	ListAll(ctx context.Context) ([]entity.User, error)
	SearchLike(ctx context.Context, query string, limit int) ([]entity.User, error)
	// ClearExpiredTokens drops reset and email-change tokens whose expiry is before now.
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Select(entity.PublicColumns).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return r.findOne(ctx, "reset_password_token = ? AND reset_password_expires > ?", token, time.Now())
}

func (r *userRepository) FindByEmailChangeToken(ctx context.Context, token string) (*entity.User, error) {
	return r.findOne(ctx, "email_change_token = ? AND email_change_expires > ?", token, time.Now())
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]entity.User, int64, error) {
	var (
		users []entity.User
		total int64
	)

	base := r.db.WithContext(ctx).Model(&entity.User{}).Where("suspended = ?", false)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("suspended = ?", false).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) ListAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *userRepository) SearchLike(ctx context.Context, query string, limit int) ([]entity.User, error) {
	var users []entity.User
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("suspended = ?", false).
		Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("username asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var cleared int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.User{}).
			Where("reset_password_token IS NOT NULL AND reset_password_expires < ?", now).
			Updates(map[string]interface{}{"reset_password_token": nil, "reset_password_expires": nil})
		if res.Error != nil {
			return res.Error
		}
		cleared += res.RowsAffected

		res = tx.Model(&entity.User{}).
			Where("email_change_token IS NOT NULL AND email_change_expires < ?", now).
			Updates(map[string]interface{}{"email_change_token": nil, "email_change_expires": nil, "pending_email": ""})
		if res.Error != nil {
			return res.Error
		}
		cleared += res.RowsAffected
		return nil
	})
	return cleared, err
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.User{}).Error
}

type InviteRepository interface {
	Create(ctx context.Context, invite *entity.AccountInvite) error
	FindByEmail(ctx context.Context, email string) (*entity.AccountInvite, error)
	FindByKey(ctx context.Context, email, key string) (*entity.AccountInvite, error)
	SetKey(ctx context.Context, id uuid.UUID, key string) error
	ListRequests(ctx context.Context) ([]entity.AccountInvite, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type inviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(ctx context.Context, invite *entity.AccountInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *inviteRepository) FindByEmail(ctx context.Context, email string) (*entity.AccountInvite, error) {
	var invite entity.AccountInvite
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) FindByKey(ctx context.Context, email, key string) (*entity.AccountInvite, error) {
	var invite entity.AccountInvite
	err := r.db.WithContext(ctx).
		Where("email = ? AND key = ? AND key <> ''", strings.ToLower(email), key).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) SetKey(ctx context.Context, id uuid.UUID, key string) error {
	return r.db.WithContext(ctx).
		Model(&entity.AccountInvite{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"key": key, "request": false}).Error
}

func (r *inviteRepository) ListRequests(ctx context.Context) ([]entity.AccountInvite, error) {
	var invites []entity.AccountInvite
	err := r.db.WithContext(ctx).Where("request = ?", true).Order("created_at asc").Find(&invites).Error
	return invites, err
}

func (r *inviteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.AccountInvite{}).Error
}
