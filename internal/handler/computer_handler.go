package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/service"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
	"github.com/sohaibminhas1/lims-api/pkg/response"
)

// ComputerHandler wires HTTP endpoints to the computer service.
type ComputerHandler struct {
	service *service.ComputerService
}

// NewComputerHandler creates a new handler.
func NewComputerHandler(svc *service.ComputerService) *ComputerHandler {
	return &ComputerHandler{service: svc}
}

// List godoc
// @Summary List computers
// @Tags Computers
// @Produce json
// @Param lab query string false "Filter by lab"
// @Param status query string false "Filter by status"
// @Param search query string false "Search asset tag"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /computers [get]
func (h *ComputerHandler) List(c *gin.Context) {
	filter := models.ComputerFilter{
		Lab:      c.Query("lab"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		s := models.ComputerStatus(status)
		filter.Status = &s
	}

	computers, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, computers, pagination)
}

// Get godoc
// @Summary Get computer
// @Tags Computers
// @Produce json
// @Param id path string true "Computer id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /computers/{id} [get]
func (h *ComputerHandler) Get(c *gin.Context) {
	computer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, computer, nil)
}

// Create godoc
// @Summary Register computer
// @Tags Computers
// @Accept json
// @Produce json
// @Param payload body service.CreateComputerRequest true "Computer payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /computers [post]
func (h *ComputerHandler) Create(c *gin.Context) {
	var req service.CreateComputerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	computer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, computer)
}

// Update godoc
// @Summary Update computer
// @Tags Computers
// @Accept json
// @Produce json
// @Param id path string true "Computer id"
// @Param payload body service.UpdateComputerRequest true "Computer payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /computers/{id} [put]
func (h *ComputerHandler) Update(c *gin.Context) {
	var req service.UpdateComputerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	computer, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, computer, nil)
}

// ChangeStatus godoc
// @Summary Change computer status
// @Tags Computers
// @Accept json
// @Produce json
// @Param id path string true "Computer id"
// @Param payload body service.ChangeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /computers/{id}/status [put]
func (h *ComputerHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	computer, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, computer, nil)
}
