package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ppdb-api/internal/dto"
	"github.com/noah-isme/ppdb-api/internal/service"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
	"github.com/noah-isme/ppdb-api/pkg/response"
)

// AdminHandler serves the administrator verification queue.
type AdminHandler struct {
	service *service.RegistrationService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc *service.RegistrationService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// ListVerifications godoc
// @Summary List registrations for review
// @Description Lists non-draft registrations, optionally filtered by status
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/verifications [get]
func (h *AdminHandler) ListVerifications(c *gin.Context) {
	details, err := h.service.ListVerifications(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, map[string]interface{}{"count": len(details)})
}

// GetVerification godoc
// @Summary Get one registration for review
// @Tags Admin
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/verifications/{id} [get]
func (h *AdminHandler) GetVerification(c *gin.Context) {
	detail, err := h.service.GetVerification(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Verify godoc
// @Summary Apply a verification decision
// @Description Set the registration to verified or rejected and notify the applicant
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.VerificationActionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/verifications/{id} [post]
func (h *AdminHandler) Verify(c *gin.Context) {
	var req dto.VerificationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	detail, err := h.service.Verify(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
