package http

import (
	"net/http"

	"anoa.com/survivehub/internal/modules/download/service"
	"anoa.com/survivehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type DownloadHandler struct {
	service service.DownloadService
}

func NewDownloadHandler(service service.DownloadService) *DownloadHandler {
	return &DownloadHandler{service: service}
}

func (h *DownloadHandler) ListResources(c *gin.Context) {
	files, err := h.service.ListResources(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": files})
}

func (h *DownloadHandler) UploadResource(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, closeFile, err := response.FormFile(c, "file")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	obj, err := h.service.UploadResource(c.Request.Context(), p, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": obj})
}

func (h *DownloadHandler) DeleteResource(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteResource(c.Request.Context(), p, c.Param("name")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource deleted"})
}
