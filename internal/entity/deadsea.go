package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// DeadseaUpdate is an expedition progress report.
type DeadseaUpdate struct {
	ID       uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID uuid.UUID                       `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User                           `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text     string                          `gorm:"type:text;not null" json:"text"`
	Activity string                          `gorm:"size:50" json:"activity"`
	Duration string                          `gorm:"size:50" json:"duration"`
	Location datatypes.JSONType[Coordinates] `json:"location"`
	ImageURL *string                         `gorm:"type:text" json:"image_url,omitempty"`
	ImageID  string                          `gorm:"size:255" json:"-"`
	Commentable
	CommentCount int64     `gorm:"-" json:"comment_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (d *DeadseaUpdate) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}

func (d *DeadseaUpdate) Ref() ContentRef    { return ContentRef{Kind: KindDeadseaUpdate, ID: d.ID} }
func (d *DeadseaUpdate) OwnerID() uuid.UUID { return d.AuthorID }
