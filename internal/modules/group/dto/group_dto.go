package dto

import "github.com/google/uuid"

type CreateGroupRequest struct {
	Name        string `form:"name" json:"name" binding:"required,max=100"`
	Description string `form:"description" json:"description" binding:"max=5000"`
	Private     bool   `form:"private" json:"private"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

type CreateDiscussionRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"max=10000"`
}

type ResponseRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

type MembershipResponse struct {
	Member bool `json:"member"`
}
