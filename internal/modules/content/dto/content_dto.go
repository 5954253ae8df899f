package dto

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

type LikeResponse struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"totalLikes"`
}
