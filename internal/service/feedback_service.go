package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type feedbackRepository interface {
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, int, error)
	Create(ctx context.Context, feedback *models.Feedback) error
}

// CreateFeedbackRequest payload for submitting feedback.
type CreateFeedbackRequest struct {
	Subject string `json:"subject" validate:"required,min=2,max=120"`
	Message string `json:"message" validate:"required,min=2,max=1000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// FeedbackService handles feedback submission and listing.
type FeedbackService struct {
	repo      feedbackRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService creates an instance of FeedbackService.
func NewFeedbackService(repo feedbackRepository, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &FeedbackService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated feedback entries.
func (s *FeedbackService) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list feedback")
	}
	pagination := &models.Pagination{Page: normalizePage(filter.Page), PageSize: normalizePageSize(filter.PageSize), TotalCount: total}
	return entries, pagination, nil
}

// Create stores a feedback entry for the requesting account.
func (s *FeedbackService) Create(ctx context.Context, userID string, req CreateFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	feedback := &models.Feedback{
		UserID:  userID,
		Subject: req.Subject,
		Message: req.Message,
		Rating:  req.Rating,
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create feedback")
	}
	return feedback, nil
}
