package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sponsor struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BrandName    string        `gorm:"size:100;not null" json:"brand_name"`
	Slug         string        `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	BrandProfile string        `gorm:"type:text" json:"brand_profile"`
	BrandLogo    *string       `gorm:"type:text" json:"brand_logo,omitempty"`
	BrandLogoID  string        `gorm:"size:255" json:"-"`
	PageCover    *string       `gorm:"type:text" json:"page_cover,omitempty"`
	PageCoverID  string        `gorm:"size:255" json:"-"`
	Deals        []SponsorDeal `gorm:"foreignKey:SponsorID" json:"deals,omitempty"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Sponsor) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

type SponsorDeal struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SponsorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sponsor_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"size:100" json:"code"`
	URL         string    `gorm:"type:text" json:"url"`
	ImageURL    *string   `gorm:"type:text" json:"image_url,omitempty"`
	ImageID     string    `gorm:"size:255" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d *SponsorDeal) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}
