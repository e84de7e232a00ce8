package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
	"github.com/sohaibminhas1/lims-api/pkg/export"
)

type reportReservationLister interface {
	ListForExport(ctx context.Context, filter models.ReservationFilter, limit int) ([]models.Reservation, error)
}

type reportComplaintLister interface {
	ListForExport(ctx context.Context, filter models.ComplaintFilter, limit int) ([]models.Complaint, error)
}

// ReportService renders reservation and complaint summaries as CSV or PDF
// downloads for the admin dashboards.
type ReportService struct {
	reservations reportReservationLister
	complaints   reportComplaintLister
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
	maxRows      int
}

// NewReportService creates an instance of ReportService.
func NewReportService(reservations reportReservationLister, complaints reportComplaintLister, logger *zap.Logger, maxRows int) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ReportService{
		reservations: reservations,
		complaints:   complaints,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
		maxRows:      maxRows,
	}
}

// ReservationReport renders the reservation log in the requested format.
// Supported formats are "csv" and "pdf".
func (s *ReportService) ReservationReport(ctx context.Context, format string) ([]byte, string, error) {
	rows, err := s.reservations.ListForExport(ctx, models.ReservationFilter{}, s.maxRows)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load reservations")
	}

	data := export.Dataset{
		Headers: []string{"ID", "User", "Computer", "Lab", "Starts", "Ends", "Status"},
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"ID":       r.ID,
			"User":     r.UserID,
			"Computer": r.ComputerID,
			"Lab":      r.Lab,
			"Starts":   r.StartsAt.Format(time.RFC3339),
			"Ends":     r.EndsAt.Format(time.RFC3339),
			"Status":   string(r.Status),
		})
	}

	return s.render(data, "Lab Reservations", format)
}

// ComplaintReport renders the complaint log in the requested format.
func (s *ReportService) ComplaintReport(ctx context.Context, format string) ([]byte, string, error) {
	rows, err := s.complaints.ListForExport(ctx, models.ComplaintFilter{}, s.maxRows)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load complaints")
	}

	data := export.Dataset{
		Headers: []string{"ID", "User", "Lab", "Category", "Status", "Filed"},
	}
	for _, c := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"ID":       c.ID,
			"User":     c.UserID,
			"Lab":      c.Lab,
			"Category": c.Category,
			"Status":   string(c.Status),
			"Filed":    strconv.FormatInt(c.CreatedAt.Unix(), 10),
		})
	}

	return s.render(data, "Lab Complaints", format)
}

func (s *ReportService) render(data export.Dataset, title, format string) ([]byte, string, error) {
	switch format {
	case "", "csv":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}
