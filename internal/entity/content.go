package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentKind tags the content types that carry comments, likes and reports.
type ContentKind string

const (
	KindPost          ContentKind = "post"
	KindModule        ContentKind = "module"
	KindDeadseaUpdate ContentKind = "deadsea_update"
)

var contentTables = map[ContentKind]string{
	KindPost:          "posts",
	KindModule:        "modules",
	KindDeadseaUpdate: "deadsea_updates",
}

func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(s)
	if _, ok := contentTables[k]; !ok {
		return "", fmt.Errorf("unknown content kind %q", s)
	}
	return k, nil
}

func ContentKinds() []ContentKind {
	return []ContentKind{KindPost, KindModule, KindDeadseaUpdate}
}

// Table is the table holding content of this kind.
func (k ContentKind) Table() string {
	return contentTables[k]
}

type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

func (r ContentRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}

// Commentable is embedded into every content entity. Comments and like state
// are not columns; the content repository fills them on explicit reads.
type Commentable struct {
	IsReported    bool      `gorm:"not null;index" json:"is_reported"`
	Comments      []Comment `gorm:"-" json:"comments,omitempty"`
	LikeCount     int64     `gorm:"-" json:"like_count"`
	LikedByViewer bool      `gorm:"-" json:"liked_by_viewer"`
}

func (c *Commentable) Thread() *Commentable {
	return c
}

// Content is implemented by Post, Module and DeadseaUpdate.
type Content interface {
	Ref() ContentRef
	OwnerID() uuid.UUID
	Thread() *Commentable
}

type Comment struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ContentKind ContentKind `gorm:"size:20;not null;index:idx_comments_content,priority:1" json:"content_kind"`
	ContentID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_comments_content,priority:2" json:"content_id"`
	AuthorID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *User       `gorm:"foreignKey:AuthorID" json:"author"`
	Text        string      `gorm:"type:text;not null" json:"text"`
	Replies     []Reply     `gorm:"foreignKey:CommentID" json:"replies"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type Reply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;index" json:"comment_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
