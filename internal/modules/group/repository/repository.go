package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository interface {
	CountSlugs(ctx context.Context, base string) (int64, error)
	// Create inserts the group and its author's membership together.
	Create(ctx context.Context, group *entity.Group) error
	FindBySlug(ctx context.Context, slug string) (*entity.Group, error)
	// ListVisible returns public groups plus private groups viewerID belongs to.
	ListVisible(ctx context.Context, viewerID uuid.UUID, all bool) ([]entity.Group, error)
	// Delete removes the group with its memberships, discussions and responses.
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	Members(ctx context.Context, groupID uuid.UUID) ([]entity.User, error)
	MemberCounts(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DeleteMembershipsFor(ctx context.Context, userID uuid.UUID) error

	CreateDiscussion(ctx context.Context, discussion *entity.Discussion) error
	ListDiscussions(ctx context.Context, groupID uuid.UUID) ([]entity.Discussion, error)
	FindDiscussion(ctx context.Context, id uuid.UUID) (*entity.Discussion, error)
	AddResponse(ctx context.Context, response *entity.Response) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(entity.PublicColumns)
}

func (r *groupRepository) CountSlugs(ctx context.Context, base string) (int64, error) {
	return database.CountSlugs(r.db.WithContext(ctx), &entity.Group{}, base)
}

func (r *groupRepository) Create(ctx context.Context, group *entity.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&entity.GroupMember{GroupID: group.ID, UserID: group.AuthorID}).Error
	})
}

func (r *groupRepository) FindBySlug(ctx context.Context, slug string) (*entity.Group, error) {
	var group entity.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	var group entity.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) ListVisible(ctx context.Context, viewerID uuid.UUID, all bool) ([]entity.Group, error) {
	var groups []entity.Group
	query := r.db.WithContext(ctx).Order("created_at desc, id desc")
	if !all {
		memberOf := r.db.Model(&entity.GroupMember{}).Select("group_id").Where("user_id = ?", viewerID)
		query = query.Where("private = ? OR id IN (?)", false, memberOf)
	}
	err := query.Find(&groups).Error
	return groups, err
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		discussions := tx.Model(&entity.Discussion{}).Select("id").Where("group_id = ?", id)
		if err := tx.Where("discussion_id IN (?)", discussions).Delete(&entity.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&entity.Discussion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&entity.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Group{}).Error
	})
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.GroupMember{GroupID: groupID, UserID: userID})
	return res.RowsAffected > 0, res.Error
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&entity.GroupMember{})
	return res.RowsAffected > 0, res.Error
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *groupRepository) Members(ctx context.Context, groupID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	memberIDs := r.db.Model(&entity.GroupMember{}).Select("user_id").Where("group_id = ?", groupID)
	err := r.db.WithContext(ctx).
		Select(entity.PublicColumns).
		Where("id IN (?)", memberIDs).
		Order("username asc").
		Find(&users).Error
	return users, err
}

func (r *groupRepository) MemberCounts(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		GroupID uuid.UUID
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Select("group_id, count(*) as count").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Count
	}
	return counts, nil
}

func (r *groupRepository) DeleteMembershipsFor(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.GroupMember{}).Error
}

func (r *groupRepository) CreateDiscussion(ctx context.Context, discussion *entity.Discussion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(discussion).Error
}

func (r *groupRepository) ListDiscussions(ctx context.Context, groupID uuid.UUID) ([]entity.Discussion, error) {
	var discussions []entity.Discussion
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Where("group_id = ?", groupID).
		Order("created_at desc, id desc").
		Find(&discussions).Error
	return discussions, err
}

func (r *groupRepository) FindDiscussion(ctx context.Context, id uuid.UUID) (*entity.Discussion, error) {
	var discussion entity.Discussion
	err := r.db.WithContext(ctx).
		Preload("Author", publicUser).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Preload("Responses.Author", publicUser).
		Where("id = ?", id).
		First(&discussion).Error
	if err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *groupRepository) AddResponse(ctx context.Context, response *entity.Response) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(response).Error
}
