package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	"github.com/sohaibminhas1/lims-api/pkg/config"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type mockReservationRepo struct {
	reservations map[string]*models.Reservation
	overlapping  int
	openByUser   int
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]*models.Reservation)}
}

func (m *mockReservationRepo) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	var out []models.Reservation
	for _, r := range m.reservations {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = "res-1"
	}
	m.reservations[reservation.ID] = reservation
	return nil
}

func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus, decidedBy *string) error {
	if r, ok := m.reservations[id]; ok {
		r.Status = status
		r.DecidedBy = decidedBy
	}
	return nil
}

func (m *mockReservationRepo) CountOverlapping(ctx context.Context, computerID string, startsAt, endsAt time.Time, excludeID string) (int, error) {
	return m.overlapping, nil
}

func (m *mockReservationRepo) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	return m.openByUser, nil
}

type mockComputerLookup struct {
	computer *models.Computer
}

func (m *mockComputerLookup) FindByID(ctx context.Context, id string) (*models.Computer, error) {
	if m.computer == nil || m.computer.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.computer, nil
}

func newTestReservationService(repo *mockReservationRepo, computers *mockComputerLookup) *ReservationService {
	return NewReservationService(repo, computers, validation.New(), zap.NewNop(), config.ReservationsConfig{
		MaxDuration:    4 * time.Hour,
		MaxOpenPerUser: 3,
	})
}

func availableComputer() *models.Computer {
	return &models.Computer{ID: "pc-1", AssetTag: "LAB1-PC01", Lab: "Lab 1", Status: models.ComputerAvailable}
}

func TestReservationCreate(t *testing.T) {
	repo := newMockReservationRepo()
	svc := newTestReservationService(repo, &mockComputerLookup{computer: availableComputer()})

	start := time.Now().Add(time.Hour)
	reservation, err := svc.Create(context.Background(), "alice01", CreateReservationRequest{
		ComputerID: "pc-1",
		Purpose:    "Compilers assignment",
		StartsAt:   start,
		EndsAt:     start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, reservation.Status)
	assert.Equal(t, "Lab 1", reservation.Lab)
	assert.Equal(t, "alice01", reservation.UserID)
}

func TestReservationCreateInvertedWindow(t *testing.T) {
	svc := newTestReservationService(newMockReservationRepo(), &mockComputerLookup{computer: availableComputer()})

	start := time.Now().Add(time.Hour)
	_, err := svc.Create(context.Background(), "alice01", CreateReservationRequest{
		ComputerID: "pc-1",
		Purpose:    "Compilers assignment",
		StartsAt:   start,
		EndsAt:     start.Add(-time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReservationCreateTooLong(t *testing.T) {
	svc := newTestReservationService(newMockReservationRepo(), &mockComputerLookup{computer: availableComputer()})

	start := time.Now().Add(time.Hour)
	_, err := svc.Create(context.Background(), "alice01", CreateReservationRequest{
		ComputerID: "pc-1",
		Purpose:    "Long run",
		StartsAt:   start,
		EndsAt:     start.Add(9 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReservationCreateUnreservableComputer(t *testing.T) {
	computer := availableComputer()
	computer.Status = models.ComputerMaintenance
	svc := newTestReservationService(newMockReservationRepo(), &mockComputerLookup{computer: computer})

	start := time.Now().Add(time.Hour)
	_, err := svc.Create(context.Background(), "alice01", CreateReservationRequest{
		ComputerID: "pc-1",
		Purpose:    "Compilers assignment",
		StartsAt:   start,
		EndsAt:     start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReservationCreateTooManyOpen(t *testing.T) {
	repo := newMockReservationRepo()
	repo.openByUser = 3
	svc := newTestReservationService(repo, &mockComputerLookup{computer: availableComputer()})

	start := time.Now().Add(time.Hour)
	_, err := svc.Create(context.Background(), "alice01", CreateReservationRequest{
		ComputerID: "pc-1",
		Purpose:    "One too many",
		StartsAt:   start,
		EndsAt:     start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReservationApprove(t *testing.T) {
	repo := newMockReservationRepo()
	repo.reservations["res-1"] = &models.Reservation{ID: "res-1", UserID: "alice01", ComputerID: "pc-1", Status: models.ReservationPending}
	svc := newTestReservationService(repo, &mockComputerLookup{})

	reservation, err := svc.Approve(context.Background(), "res-1", "admin01")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationApproved, reservation.Status)
	require.NotNil(t, reservation.DecidedBy)
	assert.Equal(t, "admin01", *reservation.DecidedBy)
}

func TestReservationApproveOverlap(t *testing.T) {
	repo := newMockReservationRepo()
	repo.reservations["res-1"] = &models.Reservation{ID: "res-1", Status: models.ReservationPending}
	repo.overlapping = 1
	svc := newTestReservationService(repo, &mockComputerLookup{})

	_, err := svc.Approve(context.Background(), "res-1", "admin01")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReservationApproveAlreadyDecided(t *testing.T) {
	repo := newMockReservationRepo()
	repo.reservations["res-1"] = &models.Reservation{ID: "res-1", Status: models.ReservationApproved}
	svc := newTestReservationService(repo, &mockComputerLookup{})

	_, err := svc.Approve(context.Background(), "res-1", "admin01")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReservationCancelOwnerOnly(t *testing.T) {
	repo := newMockReservationRepo()
	repo.reservations["res-1"] = &models.Reservation{ID: "res-1", UserID: "alice01", Status: models.ReservationPending}
	svc := newTestReservationService(repo, &mockComputerLookup{})

	_, err := svc.Cancel(context.Background(), "res-1", "mallory")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	reservation, err := svc.Cancel(context.Background(), "res-1", "alice01")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, reservation.Status)
}
