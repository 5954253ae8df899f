package http

import (
	"fmt"
	"net/http"

	"anoa.com/survivehub/internal/entity"
	adminDto "anoa.com/survivehub/internal/modules/admin/dto"
	"anoa.com/survivehub/internal/modules/admin/service"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) ListReported(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	items, err := h.service.ListReported(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req adminDto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), p, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *AdminHandler) SuspendUser(c *gin.Context) {
	h.suspension(c, true)
}

func (h *AdminHandler) UnsuspendUser(c *gin.Context) {
	h.suspension(c, false)
}

func (h *AdminHandler) suspension(c *gin.Context, suspend bool) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if suspend {
		err = h.service.SuspendUser(c.Request.Context(), p, id)
	} else {
		err = h.service.UnsuspendUser(c.Request.Context(), p, id)
	}
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suspended": suspend})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), p, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func contentRef(c *gin.Context) (entity.ContentRef, error) {
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

func (h *AdminHandler) MarkSafe(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := contentRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkSafe(c.Request.Context(), p, ref); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked safe"})
}

func (h *AdminHandler) DeleteContent(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ref, err := contentRef(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteContent(c.Request.Context(), p, ref); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted"})
}
