package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository stores the comment trees, likes and reports shared by every content kind.
// Each mutation is one conditional statement, so concurrent callers never lose each other's writes.
type ContentRepository interface {
	// FindOwner returns the author of the content, or gorm.ErrRecordNotFound.
	FindOwner(ctx context.Context, ref entity.ContentRef) (uuid.UUID, error)

	CreateComment(ctx context.Context, comment *entity.Comment) error
	FindComment(ctx context.Context, ref entity.ContentRef, commentID uuid.UUID) (*entity.Comment, error)
	CreateReply(ctx context.Context, reply *entity.Reply) error
	ListComments(ctx context.Context, ref entity.ContentRef) ([]entity.Comment, error)
	CountComments(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) (map[uuid.UUID]int64, error)

	// AddLike and RemoveLike report whether the set changed.
	AddLike(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error)
	RemoveLike(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error)
	CountLikes(ctx context.Context, ref entity.ContentRef) (int64, error)
	HasLiked(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error)

	AddReport(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error)
	ClearReports(ctx context.Context, ref entity.ContentRef) error
	CountReports(ctx context.Context, ref entity.ContentRef) (int64, error)

	// DeleteMany removes the content rows with their comments, replies, likes and reports.
	// It returns the media ids the rows referenced and how many rows were removed.
	DeleteMany(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) ([]string, int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

var mediaColumns = map[entity.ContentKind]string{
	entity.KindPost:          "image_id",
	entity.KindModule:        "video_id",
	entity.KindDeadseaUpdate: "image_id",
}

func modelFor(kind entity.ContentKind) interface{} {
	switch kind {
	case entity.KindModule:
		return &entity.Module{}
	case entity.KindDeadseaUpdate:
		return &entity.DeadseaUpdate{}
	default:
		return &entity.Post{}
	}
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(entity.PublicColumns)
}

func refScope(ref entity.ContentRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_kind = ? AND content_id = ?", ref.Kind, ref.ID)
	}
}

func (r *contentRepository) FindOwner(ctx context.Context, ref entity.ContentRef) (uuid.UUID, error) {
	var row struct {
		AuthorID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Model(modelFor(ref.Kind)).
		Select("author_id").
		Where("id = ?", ref.ID).
		Take(&row).Error
	if err != nil {
		return uuid.Nil, err
	}
	return row.AuthorID, nil
}

func (r *contentRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *contentRepository) FindComment(ctx context.Context, ref entity.ContentRef, commentID uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	err := r.db.WithContext(ctx).
		Scopes(refScope(ref)).
		Where("id = ?", commentID).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *contentRepository) CreateReply(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *contentRepository) ListComments(ctx context.Context, ref entity.ContentRef) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Scopes(refScope(ref)).
		Preload("Author", publicUser).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Preload("Replies.Author", publicUser).
		Order("created_at asc, id asc").
		Find(&comments).Error
	return comments, err
}

func (r *contentRepository) CountComments(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		ContentID uuid.UUID
		Count     int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Select("content_id, count(*) as count").
		Where("content_kind = ? AND content_id IN ?", kind, ids).
		Group("content_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ContentID] = row.Count
	}
	return counts, nil
}

func (r *contentRepository) AddLike(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.ContentLike{ContentKind: ref.Kind, ContentID: ref.ID, UserID: userID})
	return res.RowsAffected == 1, res.Error
}

func (r *contentRepository) RemoveLike(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Scopes(refScope(ref)).
		Where("user_id = ?", userID).
		Delete(&entity.ContentLike{})
	return res.RowsAffected == 1, res.Error
}

func (r *contentRepository) CountLikes(ctx context.Context, ref entity.ContentRef) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ContentLike{}).Scopes(refScope(ref)).Count(&count).Error
	return count, err
}

func (r *contentRepository) HasLiked(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ContentLike{}).
		Scopes(refScope(ref)).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *contentRepository) AddReport(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.ContentReport{ContentKind: ref.Kind, ContentID: ref.ID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		added = res.RowsAffected == 1

		return tx.Model(modelFor(ref.Kind)).Where("id = ?", ref.ID).Update("is_reported", true).Error
	})
	return added, err
}

func (r *contentRepository) ClearReports(ctx context.Context, ref entity.ContentRef) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(refScope(ref)).Delete(&entity.ContentReport{}).Error; err != nil {
			return err
		}
		return tx.Model(modelFor(ref.Kind)).Where("id = ?", ref.ID).Update("is_reported", false).Error
	})
}

func (r *contentRepository) CountReports(ctx context.Context, ref entity.ContentRef) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ContentReport{}).Scopes(refScope(ref)).Count(&count).Error
	return count, err
}

func (r *contentRepository) DeleteMany(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) ([]string, int64, error) {
	if len(ids) == 0 {
		return nil, 0, nil
	}

	var (
		mediaIDs []string
		deleted  int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		col := mediaColumns[kind]
		if err := tx.Model(modelFor(kind)).
			Where("id IN ? AND "+col+" <> ?", ids, "").
			Pluck(col, &mediaIDs).Error; err != nil {
			return err
		}

		comments := tx.Model(&entity.Comment{}).Select("id").Where("content_kind = ? AND content_id IN ?", kind, ids)
		if err := tx.Where("comment_id IN (?)", comments).Delete(&entity.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("content_kind = ? AND content_id IN ?", kind, ids).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("content_kind = ? AND content_id IN ?", kind, ids).Delete(&entity.ContentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("content_kind = ? AND content_id IN ?", kind, ids).Delete(&entity.ContentReport{}).Error; err != nil {
			return err
		}

		res := tx.Where("id IN ?", ids).Delete(modelFor(kind))
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return mediaIDs, deleted, nil
}
