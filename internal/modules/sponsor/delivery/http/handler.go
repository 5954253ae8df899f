package http

import (
	"net/http"

	sponsorDto "anoa.com/survivehub/internal/modules/sponsor/dto"
	"anoa.com/survivehub/internal/modules/sponsor/service"
	"anoa.com/survivehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type SponsorHandler struct {
	service service.SponsorService
}

func NewSponsorHandler(service service.SponsorService) *SponsorHandler {
	return &SponsorHandler{service: service}
}

func (h *SponsorHandler) ListSponsors(c *gin.Context) {
	sponsors, err := h.service.ListSponsors(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sponsors})
}

func (h *SponsorHandler) GetSponsor(c *gin.Context) {
	sponsor, err := h.service.GetSponsor(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sponsor})
}

func (h *SponsorHandler) CreateSponsor(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req sponsorDto.SponsorRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	logo, closeLogo, err := response.FormFile(c, "logo")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeLogo()

	cover, closeCover, err := response.FormFile(c, "cover")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeCover()

	sponsor, err := h.service.CreateSponsor(c.Request.Context(), p, req, logo, cover)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sponsor})
}

func (h *SponsorHandler) AddDeal(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req sponsorDto.DealRequest
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

	deal, err := h.service.AddDeal(c.Request.Context(), p, c.Param("slug"), req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": deal})
}
