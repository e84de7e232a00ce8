package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type stubReservationLister struct {
	rows      []models.Reservation
	lastLimit int
}

func (s *stubReservationLister) ListForExport(ctx context.Context, filter models.ReservationFilter, limit int) ([]models.Reservation, error) {
	s.lastLimit = limit
	return s.rows, nil
}

type stubComplaintLister struct {
	rows      []models.Complaint
	lastLimit int
}

func (s *stubComplaintLister) ListForExport(ctx context.Context, filter models.ComplaintFilter, limit int) ([]models.Complaint, error) {
	s.lastLimit = limit
	return s.rows, nil
}

func TestReservationReportCSV(t *testing.T) {
	now := time.Now().UTC()
	reservations := &stubReservationLister{rows: []models.Reservation{
		{ID: "res-1", UserID: "alice01", ComputerID: "pc-1", Lab: "Lab 1", StartsAt: now, EndsAt: now.Add(time.Hour), Status: models.ReservationApproved},
	}}
	svc := NewReportService(reservations, &stubComplaintLister{}, zap.NewNop(), 100)

	payload, contentType, err := svc.ReservationReport(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	text := string(payload)
	assert.True(t, strings.HasPrefix(text, "ID,User,Computer,Lab,Starts,Ends,Status"))
	assert.Contains(t, text, "res-1")
	assert.Contains(t, text, "alice01")
	assert.Contains(t, text, "APPROVED")
}

func TestComplaintReportPDF(t *testing.T) {
	complaints := &stubComplaintLister{rows: []models.Complaint{
		{ID: "c-1", UserID: "bob02", Lab: "Lab 2", Category: "hardware", Status: models.ComplaintOpen, CreatedAt: time.Now()},
	}}
	svc := NewReportService(&stubReservationLister{}, complaints, zap.NewNop(), 100)

	payload, contentType, err := svc.ComplaintReport(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestReportPassesRowCapToStore(t *testing.T) {
	reservations := &stubReservationLister{}
	complaints := &stubComplaintLister{}
	svc := NewReportService(reservations, complaints, zap.NewNop(), 5000)

	_, _, err := svc.ReservationReport(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, 5000, reservations.lastLimit)

	_, _, err = svc.ComplaintReport(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, 5000, complaints.lastLimit)
}

func TestReportDefaultsToCSV(t *testing.T) {
	svc := NewReportService(&stubReservationLister{}, &stubComplaintLister{}, zap.NewNop(), 100)

	_, contentType, err := svc.ReservationReport(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
}

func TestReportUnsupportedFormat(t *testing.T) {
	svc := NewReportService(&stubReservationLister{}, &stubComplaintLister{}, zap.NewNop(), 100)

	_, _, err := svc.ReservationReport(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
