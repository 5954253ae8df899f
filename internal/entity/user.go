package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email,omitempty"`
	Username          string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	PasswordHash      string    `gorm:"size:255;not null" json:"-"`
	Role              string    `gorm:"size:20;not null" json:"role,omitempty"`
	Suspended         bool      `gorm:"not null;index" json:"suspended"`
	Online            bool      `gorm:"not null" json:"online"`
	SeenNotifications bool      `gorm:"not null" json:"seen_notifications"`
	Public            bool      `gorm:"not null" json:"public"`

	Bio       string  `gorm:"type:text" json:"bio,omitempty"`
	Location  string  `gorm:"size:100" json:"location,omitempty"`
	Website   string  `gorm:"size:255" json:"website,omitempty"`
	AvatarURL *string `gorm:"type:text" json:"avatar_url,omitempty"`
	AvatarID  string  `gorm:"size:255" json:"-"`
	CoverURL  *string `gorm:"type:text" json:"cover_url,omitempty"`
	CoverID   string  `gorm:"size:255" json:"-"`

	ResetPasswordToken   *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	EmailChangeToken     *string    `gorm:"size:64;index" json:"-"`
	EmailChangeExpires   *time.Time `json:"-"`
	PendingEmail         string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// PublicColumns are the user columns safe to resolve onto other people's content.
var PublicColumns = []string{"id", "username", "name", "avatar_url", "online"}

// Follow is one edge of the social graph. following(A) and followers(B) are both projections of it.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"followee_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type AccountInvite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Key       string    `gorm:"size:64;index" json:"-"`
	Request   bool      `gorm:"not null" json:"request"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (i *AccountInvite) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}
