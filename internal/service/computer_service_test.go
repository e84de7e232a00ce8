package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type mockComputerRepo struct {
	computers map[string]*models.Computer
}

func newMockComputerRepo() *mockComputerRepo {
	return &mockComputerRepo{computers: make(map[string]*models.Computer)}
}

func (m *mockComputerRepo) List(ctx context.Context, filter models.ComputerFilter) ([]models.Computer, int, error) {
	var out []models.Computer
	for _, c := range m.computers {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockComputerRepo) FindByID(ctx context.Context, id string) (*models.Computer, error) {
	computer, ok := m.computers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return computer, nil
}

func (m *mockComputerRepo) Create(ctx context.Context, computer *models.Computer) error {
	if computer.ID == "" {
		computer.ID = "pc-1"
	}
	m.computers[computer.ID] = computer
	return nil
}

func (m *mockComputerRepo) Update(ctx context.Context, computer *models.Computer) error {
	m.computers[computer.ID] = computer
	return nil
}

func (m *mockComputerRepo) UpdateStatus(ctx context.Context, id string, status models.ComputerStatus) error {
	if computer, ok := m.computers[id]; ok {
		computer.Status = status
	}
	return nil
}

func newTestComputerService(repo *mockComputerRepo) *ComputerService {
	return NewComputerService(repo, validation.New(), zap.NewNop())
}

func TestComputerServiceCreateDefaultsAvailable(t *testing.T) {
	repo := newMockComputerRepo()
	svc := newTestComputerService(repo)

	computer, err := svc.Create(context.Background(), CreateComputerRequest{
		AssetTag: "LAB1-PC-01",
		Lab:      "Lab 1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComputerAvailable, computer.Status)
}

func TestComputerServiceChangeStatus(t *testing.T) {
	repo := newMockComputerRepo()
	repo.computers["pc-1"] = &models.Computer{ID: "pc-1", AssetTag: "LAB1-PC-01", Lab: "Lab 1", Status: models.ComputerAvailable}
	svc := newTestComputerService(repo)

	computer, err := svc.ChangeStatus(context.Background(), "pc-1", ChangeStatusRequest{Status: models.ComputerMaintenance})
	require.NoError(t, err)
	assert.Equal(t, models.ComputerMaintenance, computer.Status)
	assert.Equal(t, models.ComputerMaintenance, repo.computers["pc-1"].Status)
}

func TestComputerServiceChangeStatusRetired(t *testing.T) {
	repo := newMockComputerRepo()
	repo.computers["pc-1"] = &models.Computer{ID: "pc-1", AssetTag: "LAB1-PC-01", Lab: "Lab 1", Status: models.ComputerRetired}
	svc := newTestComputerService(repo)

	_, err := svc.ChangeStatus(context.Background(), "pc-1", ChangeStatusRequest{Status: models.ComputerAvailable})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestComputerServiceChangeStatusMissing(t *testing.T) {
	svc := newTestComputerService(newMockComputerRepo())

	_, err := svc.ChangeStatus(context.Background(), "ghost", ChangeStatusRequest{Status: models.ComputerAvailable})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestComputerServiceChangeStatusInvalid(t *testing.T) {
	svc := newTestComputerService(newMockComputerRepo())

	_, err := svc.ChangeStatus(context.Background(), "pc-1", ChangeStatusRequest{Status: "BROKEN"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
