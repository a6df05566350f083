package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ppdb-api/internal/dto"
	"github.com/noah-isme/ppdb-api/internal/service"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
	"github.com/noah-isme/ppdb-api/pkg/response"
)

// RegistrationHandler exposes the applicant's own registration record.
type RegistrationHandler struct {
	service *service.RegistrationService
}

// NewRegistrationHandler creates a new handler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// GetProfile godoc
// @Summary Get own registration
// @Description Returns the registration record, creating the draft on first access
// @Tags Registration
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /registration [get]
func (h *RegistrationHandler) GetProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// UpdateSections godoc
// @Summary Update registration sections
// @Description Merge a partial section patch into the registration and recompute status
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body dto.SectionPatch true "Section patch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /registration [put]
func (h *RegistrationHandler) UpdateSections(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var patch dto.SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}

	reg, err := h.service.UpdateSections(c.Request.Context(), claims.UserID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg)
}
