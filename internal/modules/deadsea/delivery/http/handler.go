package http

import (
	"net/http"

	deadseaDto "anoa.com/survivehub/internal/modules/deadsea/dto"
	"anoa.com/survivehub/internal/modules/deadsea/service"
	"anoa.com/survivehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type DeadseaHandler struct {
	service service.DeadseaService
}

func NewDeadseaHandler(service service.DeadseaService) *DeadseaHandler {
	return &DeadseaHandler{service: service}
}

func (h *DeadseaHandler) ListUpdates(c *gin.Context) {
	updates, err := h.service.ListUpdates(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updates})
}

func (h *DeadseaHandler) GetUpdate(c *gin.Context) {
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

	update, err := h.service.GetUpdate(c.Request.Context(), id, p.UserID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": update})
}

func (h *DeadseaHandler) CreateUpdate(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req deadseaDto.CreateUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	image, closeFile, err := response.FormFile(c, "image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	update, err := h.service.CreateUpdate(c.Request.Context(), p, req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": update})
}
