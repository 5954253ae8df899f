package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text     string    `gorm:"type:text" json:"text"`
	ImageURL *string   `gorm:"type:text" json:"image_url,omitempty"`
	ImageID  string    `gorm:"size:255" json:"-"`
	Commentable
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

func (p *Post) Ref() ContentRef    { return ContentRef{Kind: KindPost, ID: p.ID} }
func (p *Post) OwnerID() uuid.UUID { return p.AuthorID }
