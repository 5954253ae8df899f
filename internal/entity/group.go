package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"size:100;not null" json:"name"`
	Slug        string       `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string       `gorm:"type:text" json:"description"`
	AuthorID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"author_id"`
	Private     bool         `gorm:"not null" json:"private"`
	ImageURL    *string      `gorm:"type:text" json:"image_url,omitempty"`
	ImageID     string       `gorm:"size:255" json:"-"`
	Members     []User       `gorm:"-" json:"members,omitempty"`
	Discussions []Discussion `gorm:"foreignKey:GroupID" json:"discussions,omitempty"`
	MemberCount int64        `gorm:"-" json:"member_count"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}

type GroupMember struct {
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type Discussion struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"group_id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	Author    *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Responses []Response `gorm:"foreignKey:DiscussionID" json:"responses,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (d *Discussion) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}

type Response struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DiscussionID uuid.UUID `gorm:"type:uuid;not null;index" json:"discussion_id"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author       *User     `gorm:"foreignKey:AuthorID" json:"author"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
