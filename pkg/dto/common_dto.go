package dto

import "io"

// FileUpload is a multipart file handed from a handler to a service.
type FileUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// NewPaginationMeta computes the page count for total items split into pages of limit.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
	}
}

// Offset normalises page to at least 1 and returns the row offset for it.
func Offset(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * limit
}
