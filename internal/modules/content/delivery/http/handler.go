package http

import (
	"fmt"
	"net/http"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/internal/modules/content/dto"
	"anoa.com/survivehub/internal/modules/content/service"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/response"
	"github.com/gin-gonic/gin"
)

// ContentHandler serves the comment, like, report and delete routes of every content kind.
type ContentHandler struct {
	service service.ContentService
}

func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func parseRef(c *gin.Context) (entity.ContentRef, error) {
	kind, err := entity.ParseContentKind(c.Param("kind"))
	if err != nil {
		return entity.ContentRef{}, fmt.Errorf("%v: %w", err, apperror.ErrBadRequest)
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		return entity.ContentRef{}, err
	}
	return entity.ContentRef{Kind: kind, ID: id}, nil
}

func (h *ContentHandler) ListComments(c *gin.Context) {
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), ref)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *ContentHandler) AddComment(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), p, ref, req.Text)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": comment})
}

func (h *ContentHandler) AddReply(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	commentID, err := response.ParseUUIDParam(c, "comment_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	reply, err := h.service.AddReply(c.Request.Context(), p, ref, commentID, req.Text)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": reply})
}

func (h *ContentHandler) ToggleLike(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ToggleLike(c.Request.Context(), p, ref)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ContentHandler) Report(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Report(c.Request.Context(), p, ref); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content reported"})
}

func (h *ContentHandler) MarkSafe(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkSafe(c.Request.Context(), p, ref); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content marked safe"})
}

func (h *ContentHandler) Delete(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := parseRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, ref); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted"})
}
