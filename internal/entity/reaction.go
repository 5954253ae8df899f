package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentLike is one member of a content item's liker set.
type ContentLike struct {
	ContentKind ContentKind `gorm:"size:20;primaryKey" json:"content_kind"`
	ContentID   uuid.UUID   `gorm:"type:uuid;primaryKey" json:"content_id"`
	UserID      uuid.UUID   `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// ContentReport is one member of a content item's reported_by set.
type ContentReport struct {
	ContentKind ContentKind `gorm:"size:20;primaryKey" json:"content_kind"`
	ContentID   uuid.UUID   `gorm:"type:uuid;primaryKey" json:"content_id"`
	UserID      uuid.UUID   `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
