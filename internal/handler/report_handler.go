package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sohaibminhas1/lims-api/internal/service"
	"github.com/sohaibminhas1/lims-api/pkg/response"
)

// ReportHandler serves downloadable reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Reservations godoc
// @Summary Reservation report
// @Description Download the reservation log as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/reservations [get]
func (h *ReportHandler) Reservations(c *gin.Context) {
	payload, contentType, err := h.service.ReservationReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, "reservations", payload, contentType)
}

// Complaints godoc
// @Summary Complaint report
// @Description Download the complaint log as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/complaints [get]
func (h *ReportHandler) Complaints(c *gin.Context) {
	payload, contentType, err := h.service.ComplaintReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, "complaints", payload, contentType)
}

func serveReport(c *gin.Context, name string, payload []byte, contentType string) {
	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().UTC().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, payload)
}
