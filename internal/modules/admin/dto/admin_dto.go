package dto

import (
	"time"

	"anoa.com/survivehub/internal/entity"
	"github.com/google/uuid"
)

type UpdateUserRequest struct {
	Role     string `json:"role" binding:"omitempty,oneof=member admin"`
	Name     string `json:"name" binding:"omitempty,max=100"`
	Username string `json:"username" binding:"omitempty,min=3,max=50"`
}

// ReportedItem is one entry of the moderation queue.
type ReportedItem struct {
	Kind      entity.ContentKind `json:"kind"`
	ID        uuid.UUID          `json:"id"`
	AuthorID  uuid.UUID          `json:"author_id"`
	Reporters int64              `json:"reporters"`
	CreatedAt time.Time          `json:"created_at"`
	Content   entity.Content     `json:"content"`
}

type UserListResponse struct {
	Active    []entity.User `json:"active"`
	Suspended []entity.User `json:"suspended"`
}
