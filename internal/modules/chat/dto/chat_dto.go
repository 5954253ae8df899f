package dto

import (
	"time"

	"anoa.com/survivehub/internal/entity"
)

type StartChatRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

type MessageRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

// ChatSummary is one row of the inbox.
type ChatSummary struct {
	ID          string          `json:"id"`
	With        *entity.User    `json:"with"`
	Unread      bool            `json:"unread"`
	LastMessage *entity.Message `json:"last_message,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ChatResponse struct {
	*entity.Chat
	With *entity.User `json:"with"`
}
