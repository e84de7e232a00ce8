package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type softwareRequestRepository interface {
	List(ctx context.Context, filter models.SoftwareRequestFilter) ([]models.SoftwareRequest, int, error)
	FindByID(ctx context.Context, id string) (*models.SoftwareRequest, error)
	Create(ctx context.Context, request *models.SoftwareRequest) error
	UpdateStatus(ctx context.Context, id string, status models.SoftwareRequestStatus, decidedBy *string) error
}

// CreateSoftwareRequest payload for requesting a software install.
type CreateSoftwareRequest struct {
	ComputerID    string `json:"computer_id" validate:"required"`
	SoftwareName  string `json:"software_name" validate:"required,min=2,max=120"`
	Version       string `json:"version" validate:"max=40"`
	Justification string `json:"justification" validate:"required,min=5,max=500"`
}

// Legal software request transitions. INSTALLED is only reachable from
// APPROVED.
var softwareTransitions = map[models.SoftwareRequestStatus][]models.SoftwareRequestStatus{
	models.SoftwarePending:  {models.SoftwareApproved, models.SoftwareRejected},
	models.SoftwareApproved: {models.SoftwareInstalled},
}

// SoftwareRequestService handles the software installation workflow.
type SoftwareRequestService struct {
	repo      softwareRequestRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSoftwareRequestService creates an instance of SoftwareRequestService.
func NewSoftwareRequestService(repo softwareRequestRepository, validate *validator.Validate, logger *zap.Logger) *SoftwareRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &SoftwareRequestService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated software requests.
func (s *SoftwareRequestService) List(ctx context.Context, filter models.SoftwareRequestFilter) ([]models.SoftwareRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list software requests")
	}
	pagination := &models.Pagination{Page: normalizePage(filter.Page), PageSize: normalizePageSize(filter.PageSize), TotalCount: total}
	return requests, pagination, nil
}

// Create files a new pending software request.
func (s *SoftwareRequestService) Create(ctx context.Context, userID string, req CreateSoftwareRequest) (*models.SoftwareRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	request := &models.SoftwareRequest{
		UserID:        userID,
		ComputerID:    req.ComputerID,
		SoftwareName:  req.SoftwareName,
		Version:       req.Version,
		Justification: req.Justification,
		Status:        models.SoftwarePending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create software request")
	}
	return request, nil
}

// Transition moves a request through its workflow, rejecting jumps the
// state machine does not allow.
func (s *SoftwareRequestService) Transition(ctx context.Context, id string, target models.SoftwareRequestStatus, actorID string) (*models.SoftwareRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "software request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load software request")
	}

	if !allowedSoftwareTransition(request.Status, target) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "illegal status transition")
	}

	if err := s.repo.UpdateStatus(ctx, request.ID, target, &actorID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update software request")
	}
	request.Status = target
	request.DecidedBy = &actorID
	return request, nil
}

func allowedSoftwareTransition(from, to models.SoftwareRequestStatus) bool {
	for _, allowed := range softwareTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
