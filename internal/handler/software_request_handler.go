package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/service"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
	"github.com/sohaibminhas1/lims-api/pkg/response"
)

// SoftwareRequestHandler wires HTTP endpoints to the software request service.
type SoftwareRequestHandler struct {
	service *service.SoftwareRequestService
}

// NewSoftwareRequestHandler creates a new handler.
func NewSoftwareRequestHandler(svc *service.SoftwareRequestService) *SoftwareRequestHandler {
	return &SoftwareRequestHandler{service: svc}
}

type softwareTransitionRequest struct {
	Status models.SoftwareRequestStatus `json:"status" binding:"required"`
}

// List godoc
// @Summary List software requests
// @Description Admins and technicians see all; other roles see their own
// @Tags Software
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /software-requests [get]
func (h *SoftwareRequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.SoftwareRequestFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		s := models.SoftwareRequestStatus(status)
		filter.Status = &s
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleLabTechnician {
		filter.UserID = claims.UserID
	}

	requests, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Create godoc
// @Summary File software request
// @Tags Software
// @Accept json
// @Produce json
// @Param payload body service.CreateSoftwareRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /software-requests [post]
func (h *SoftwareRequestHandler) Create(c *gin.Context) {
	var req service.CreateSoftwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	request, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Transition godoc
// @Summary Decide software request
// @Description Move a request to APPROVED, REJECTED or INSTALLED
// @Tags Software
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param payload body softwareTransitionRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /software-requests/{id}/status [put]
func (h *SoftwareRequestHandler) Transition(c *gin.Context) {
	var req softwareTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	request, err := h.service.Transition(c.Request.Context(), c.Param("id"), req.Status, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
