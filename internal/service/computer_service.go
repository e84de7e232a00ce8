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

type computerRepository interface {
	List(ctx context.Context, filter models.ComputerFilter) ([]models.Computer, int, error)
	FindByID(ctx context.Context, id string) (*models.Computer, error)
	Create(ctx context.Context, computer *models.Computer) error
	Update(ctx context.Context, computer *models.Computer) error
	UpdateStatus(ctx context.Context, id string, status models.ComputerStatus) error
}

// CreateComputerRequest payload for registering a lab machine.
type CreateComputerRequest struct {
	AssetTag      string `json:"asset_tag" validate:"required,min=2,max=40"`
	Lab           string `json:"lab" validate:"required,min=1,max=60"`
	Specification string `json:"specification" validate:"max=500"`
}

// UpdateComputerRequest payload for editing a lab machine.
type UpdateComputerRequest struct {
	AssetTag      string                `json:"asset_tag" validate:"required,min=2,max=40"`
	Lab           string                `json:"lab" validate:"required,min=1,max=60"`
	Specification string                `json:"specification" validate:"max=500"`
	Status        models.ComputerStatus `json:"status" validate:"required,oneof=AVAILABLE IN_USE MAINTENANCE RETIRED"`
}

// ComputerService handles inventory workflows.
type ComputerService struct {
	repo      computerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComputerService creates an instance of ComputerService.
func NewComputerService(repo computerRepository, validate *validator.Validate, logger *zap.Logger) *ComputerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ComputerService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated computers.
func (s *ComputerService) List(ctx context.Context, filter models.ComputerFilter) ([]models.Computer, *models.Pagination, error) {
	computers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list computers")
	}
	pagination := &models.Pagination{Page: normalizePage(filter.Page), PageSize: normalizePageSize(filter.PageSize), TotalCount: total}
	return computers, pagination, nil
}

// Get returns a computer by id.
func (s *ComputerService) Get(ctx context.Context, id string) (*models.Computer, error) {
	computer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "computer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load computer")
	}
	return computer, nil
}

// Create registers a new machine, available by default.
func (s *ComputerService) Create(ctx context.Context, req CreateComputerRequest) (*models.Computer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	computer := &models.Computer{
		AssetTag:      req.AssetTag,
		Lab:           req.Lab,
		Specification: req.Specification,
		Status:        models.ComputerAvailable,
	}
	if err := s.repo.Create(ctx, computer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create computer")
	}
	return computer, nil
}

// Update edits a machine's attributes and status.
func (s *ComputerService) Update(ctx context.Context, id string, req UpdateComputerRequest) (*models.Computer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	computer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "computer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load computer")
	}

	computer.AssetTag = req.AssetTag
	computer.Lab = req.Lab
	computer.Specification = req.Specification
	computer.Status = req.Status

	if err := s.repo.Update(ctx, computer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update computer")
	}
	return computer, nil
}

// ChangeStatusRequest payload for flipping a machine's status alone.
type ChangeStatusRequest struct {
	Status models.ComputerStatus `json:"status" validate:"required,oneof=AVAILABLE IN_USE MAINTENANCE RETIRED"`
}

// ChangeStatus flips only the status column. Retired machines stay
// retired; re-registering one is an explicit Update.
func (s *ComputerService) ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*models.Computer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	computer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "computer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load computer")
	}
	if computer.Status == models.ComputerRetired && req.Status != models.ComputerRetired {
		return nil, appErrors.Clone(appErrors.ErrConflict, "retired computers cannot change status")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update computer status")
	}
	computer.Status = req.Status
	return computer, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return 20
	}
	return size
}
