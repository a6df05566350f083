package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ppdb-api/internal/dto"
	"github.com/noah-isme/ppdb-api/internal/service"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
	"github.com/noah-isme/ppdb-api/pkg/response"
)

// WaveHandler exposes the admission wave catalog.
type WaveHandler struct {
	service *service.WaveService
}

// NewWaveHandler creates a new handler.
func NewWaveHandler(svc *service.WaveService) *WaveHandler {
	return &WaveHandler{service: svc}
}

// List godoc
// @Summary List admission waves
// @Tags Waves
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /waves [get]
func (h *WaveHandler) List(c *gin.Context) {
	waves, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, waves)
}

// Replace godoc
// @Summary Replace the wave catalog
// @Description Atomically replace all waves; the submitted list becomes the catalog
// @Tags Waves
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceWavesRequest true "Catalog payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /waves [put]
func (h *WaveHandler) Replace(c *gin.Context) {
	var req dto.ReplaceWavesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid catalog payload"))
		return
	}

	waves, err := h.service.Replace(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, waves)
}
