package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/service"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
	"github.com/sohaibminhas1/lims-api/pkg/response"
)

// ComplaintHandler wires HTTP endpoints to the complaint service.
type ComplaintHandler struct {
	service *service.ComplaintService
}

// NewComplaintHandler creates a new handler.
func NewComplaintHandler(svc *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// List godoc
// @Summary List complaints
// @Description Admins and technicians see all; other roles see their own
// @Tags Complaints
// @Produce json
// @Param lab query string false "Filter by lab"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.ComplaintFilter{
		Lab:      c.Query("lab"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		s := models.ComplaintStatus(status)
		filter.Status = &s
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleLabTechnician {
		filter.UserID = claims.UserID
	}

	complaints, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, pagination)
}

// Get godoc
// @Summary Get complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Create godoc
// @Summary File complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body service.CreateComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req service.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	complaint, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// Update godoc
// @Summary Work complaint
// @Description Update status, assignment and resolution notes
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint id"
// @Param payload body service.UpdateComplaintRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id} [put]
func (h *ComplaintHandler) Update(c *gin.Context) {
	var req service.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	complaint, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}
