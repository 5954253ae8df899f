package http

import (
	"net/http"

	courseDto "anoa.com/survivehub/internal/modules/course/dto"
	"anoa.com/survivehub/internal/modules/course/service"
	"anoa.com/survivehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	service service.CourseService
}

func NewCourseHandler(service service.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": courses})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.service.GetCourse(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": course})
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req courseDto.CourseRequest
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

	course, err := h.service.CreateCourse(c.Request.Context(), p, req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": course})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req courseDto.CourseRequest
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

	course, err := h.service.UpdateCourse(c.Request.Context(), p, c.Param("slug"), req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": course})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), p, c.Param("slug")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

func (h *CourseHandler) CreateModule(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req courseDto.ModuleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	video, closeFile, err := response.FormFile(c, "video")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	module, err := h.service.CreateModule(c.Request.Context(), p, c.Param("slug"), req, video)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": module})
}

func (h *CourseHandler) GetModule(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	module, err := h.service.GetModule(c.Request.Context(), c.Param("slug"), p.UserID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": module})
}
