package dto

import (
	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/dto"
)

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RegisterInput struct {
	Key             string `json:"key" binding:"required"`
	Name            string `json:"name" binding:"required,max=100"`
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type OnlineInput struct {
	Online *bool `json:"online" binding:"required"`
}

type UpdateProfileInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Bio      string `json:"bio" binding:"max=2000"`
	Location string `json:"location" binding:"max=100"`
	Website  string `json:"website" binding:"omitempty,url,max=255"`
	Public   bool   `json:"public"`
}

type UserListResponse struct {
	Data []entity.User      `json:"data"`
	Meta dto.PaginationMeta `json:"meta"`
}

type ProfileResponse struct {
	User           *entity.User  `json:"user"`
	FollowerCount  int64         `json:"follower_count"`
	FollowingCount int64         `json:"following_count"`
	Following      bool          `json:"following"`
	Posts          []entity.Post `json:"posts"`
}
