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

type complaintRepository interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	Create(ctx context.Context, complaint *models.Complaint) error
	Update(ctx context.Context, complaint *models.Complaint) error
}

// CreateComplaintRequest payload for filing a complaint.
type CreateComplaintRequest struct {
	ComputerID  *string `json:"computer_id"`
	Lab         string  `json:"lab" validate:"required,min=1,max=60"`
	Category    string  `json:"category" validate:"required,min=2,max=60"`
	Description string  `json:"description" validate:"required,min=5,max=1000"`
}

// UpdateComplaintRequest payload for working a complaint.
type UpdateComplaintRequest struct {
	Status     models.ComplaintStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	AssignedTo *string                `json:"assigned_to"`
	Resolution string                 `json:"resolution" validate:"max=1000"`
}

// ComplaintService handles the complaint lifecycle.
type ComplaintService struct {
	repo      complaintRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService creates an instance of ComplaintService.
func NewComplaintService(repo complaintRepository, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ComplaintService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated complaints.
func (s *ComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error) {
	complaints, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list complaints")
	}
	pagination := &models.Pagination{Page: normalizePage(filter.Page), PageSize: normalizePageSize(filter.PageSize), TotalCount: total}
	return complaints, pagination, nil
}

// Get returns a complaint by id.
func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load complaint")
	}
	return complaint, nil
}

// Create files a new open complaint for the requesting account.
func (s *ComplaintService) Create(ctx context.Context, userID string, req CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	complaint := &models.Complaint{
		UserID:      userID,
		ComputerID:  req.ComputerID,
		Lab:         req.Lab,
		Category:    req.Category,
		Description: req.Description,
		Status:      models.ComplaintOpen,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create complaint")
	}
	return complaint, nil
}

// Update moves a complaint through its workflow and records assignment
// and resolution notes.
func (s *ComplaintService) Update(ctx context.Context, id string, req UpdateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	complaint.Status = req.Status
	complaint.AssignedTo = req.AssignedTo
	complaint.Resolution = req.Resolution

	if err := s.repo.Update(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update complaint")
	}
	return complaint, nil
}
