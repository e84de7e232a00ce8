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

type mockSoftwareRepo struct {
	requests map[string]*models.SoftwareRequest
}

func newMockSoftwareRepo() *mockSoftwareRepo {
	return &mockSoftwareRepo{requests: make(map[string]*models.SoftwareRequest)}
}

func (m *mockSoftwareRepo) List(ctx context.Context, filter models.SoftwareRequestFilter) ([]models.SoftwareRequest, int, error) {
	var out []models.SoftwareRequest
	for _, r := range m.requests {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockSoftwareRepo) FindByID(ctx context.Context, id string) (*models.SoftwareRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockSoftwareRepo) Create(ctx context.Context, request *models.SoftwareRequest) error {
	if request.ID == "" {
		request.ID = "req-1"
	}
	m.requests[request.ID] = request
	return nil
}

func (m *mockSoftwareRepo) UpdateStatus(ctx context.Context, id string, status models.SoftwareRequestStatus, decidedBy *string) error {
	if r, ok := m.requests[id]; ok {
		r.Status = status
		r.DecidedBy = decidedBy
	}
	return nil
}

func newTestSoftwareService(repo *mockSoftwareRepo) *SoftwareRequestService {
	return NewSoftwareRequestService(repo, validation.New(), zap.NewNop())
}

func TestSoftwareRequestCreate(t *testing.T) {
	repo := newMockSoftwareRepo()
	svc := newTestSoftwareService(repo)

	request, err := svc.Create(context.Background(), "alice01", CreateSoftwareRequest{
		ComputerID:    "pc-1",
		SoftwareName:  "MATLAB",
		Version:       "R2024a",
		Justification: "Signal processing course",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SoftwarePending, request.Status)
	assert.Equal(t, "alice01", request.UserID)
}

func TestSoftwareRequestTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.SoftwareRequestStatus
		to      models.SoftwareRequestStatus
		allowed bool
	}{
		{"approve pending", models.SoftwarePending, models.SoftwareApproved, true},
		{"reject pending", models.SoftwarePending, models.SoftwareRejected, true},
		{"install approved", models.SoftwareApproved, models.SoftwareInstalled, true},
		{"install pending", models.SoftwarePending, models.SoftwareInstalled, false},
		{"approve rejected", models.SoftwareRejected, models.SoftwareApproved, false},
		{"reject installed", models.SoftwareInstalled, models.SoftwareRejected, false},
	}

	for _, tc := range cases {
		repo := newMockSoftwareRepo()
		repo.requests["req-1"] = &models.SoftwareRequest{ID: "req-1", Status: tc.from}
		svc := newTestSoftwareService(repo)

		request, err := svc.Transition(context.Background(), "req-1", tc.to, "tech01")
		if tc.allowed {
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.to, request.Status, tc.name)
		} else {
			require.Error(t, err, tc.name)
			assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code, tc.name)
		}
	}
}

func TestSoftwareRequestTransitionMissing(t *testing.T) {
	svc := newTestSoftwareService(newMockSoftwareRepo())

	_, err := svc.Transition(context.Background(), "ghost", models.SoftwareApproved, "tech01")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
