package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"type:text" json:"image_url,omitempty"`
	ImageID     string    `gorm:"size:255" json:"-"`
	Modules     []Module  `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// Module is one step of a course. It carries comments like a post does.
type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Step        int       `gorm:"not null" json:"step"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	VideoURL    *string   `gorm:"type:text" json:"video_url,omitempty"`
	VideoID     string    `gorm:"size:255" json:"-"`
	Commentable
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

func (m *Module) Ref() ContentRef    { return ContentRef{Kind: KindModule, ID: m.ID} }
func (m *Module) OwnerID() uuid.UUID { return m.AuthorID }
