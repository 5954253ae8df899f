package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCommented = "commented on"
	ActionReplied   = "replied to"
	ActionLiked     = "liked"
	ActionFollowed  = "followed"
)

const (
	MediumPost    = "post"
	MediumComment = "comment"
	MediumUser    = "user"
)

type Notification struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action        string    `gorm:"size:50;not null" json:"action"`
	ActorID       uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Actor         *User     `gorm:"foreignKey:ActorID" json:"actor"`
	Medium        string    `gorm:"size:30;not null" json:"medium"`
	MediumRef     uuid.UUID `gorm:"type:uuid;not null" json:"medium_ref"`
	MediumOwnerID uuid.UUID `gorm:"type:uuid;not null" json:"medium_owner_id"`
	MediumOwner   *User     `gorm:"foreignKey:MediumOwnerID" json:"medium_owner"`
	NotifyID      uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient,priority:1" json:"notify_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_notifications_recipient,priority:2" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
