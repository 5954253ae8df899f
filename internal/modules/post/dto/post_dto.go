package dto

import (
	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/dto"
)

type CreatePostRequest struct {
	Text string `form:"text" json:"text" binding:"max=10000"`
}

type FeedResponse struct {
	Data []entity.Post     `json:"data"`
	Meta dto.PaginationMeta `json:"meta"`
}
