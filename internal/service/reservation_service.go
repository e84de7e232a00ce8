package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	"github.com/sohaibminhas1/lims-api/pkg/config"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type reservationRepository interface {
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error)
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus, decidedBy *string) error
	CountOverlapping(ctx context.Context, computerID string, startsAt, endsAt time.Time, excludeID string) (int, error)
	CountOpenByUser(ctx context.Context, userID string) (int, error)
}

type reservationComputerLookup interface {
	FindByID(ctx context.Context, id string) (*models.Computer, error)
}

// CreateReservationRequest payload for booking a lab machine.
type CreateReservationRequest struct {
	ComputerID string    `json:"computer_id" validate:"required"`
	Purpose    string    `json:"purpose" validate:"required,min=3,max=300"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required"`
}

// ReservationService handles the lab reservation workflow.
type ReservationService struct {
	repo      reservationRepository
	computers reservationComputerLookup
	validator *validator.Validate
	logger    *zap.Logger
	config    config.ReservationsConfig
}

// NewReservationService creates an instance of ReservationService.
func NewReservationService(repo reservationRepository, computers reservationComputerLookup, validate *validator.Validate, logger *zap.Logger, cfg config.ReservationsConfig) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ReservationService{repo: repo, computers: computers, validator: validate, logger: logger, config: cfg}
}

// List returns paginated reservations.
func (s *ReservationService) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, *models.Pagination, error) {
	reservations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list reservations")
	}
	pagination := &models.Pagination{Page: normalizePage(filter.Page), PageSize: normalizePageSize(filter.PageSize), TotalCount: total}
	return reservations, pagination, nil
}

// Create books a pending reservation for the requesting account.
func (s *ReservationService) Create(ctx context.Context, userID string, req CreateReservationRequest) (*models.Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ends_at must be after starts_at")
	}
	if s.config.MaxDuration > 0 && req.EndsAt.Sub(req.StartsAt) > s.config.MaxDuration {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reservation exceeds the maximum duration")
	}

	computer, err := s.computers.FindByID(ctx, req.ComputerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "computer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load computer")
	}
	if computer.Status == models.ComputerRetired || computer.Status == models.ComputerMaintenance {
		return nil, appErrors.Clone(appErrors.ErrConflict, "computer is not reservable")
	}

	if s.config.MaxOpenPerUser > 0 {
		open, err := s.repo.CountOpenByUser(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to count open reservations")
		}
		if open >= s.config.MaxOpenPerUser {
			return nil, appErrors.Clone(appErrors.ErrConflict, "too many open reservations")
		}
	}

	reservation := &models.Reservation{
		UserID:     userID,
		ComputerID: computer.ID,
		Lab:        computer.Lab,
		Purpose:    req.Purpose,
		StartsAt:   req.StartsAt.UTC(),
		EndsAt:     req.EndsAt.UTC(),
		Status:     models.ReservationPending,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create reservation")
	}
	return reservation, nil
}

// Approve transitions a pending reservation, rejecting overlap with an
// already approved booking on the same machine.
func (s *ReservationService) Approve(ctx context.Context, id, actorID string) (*models.Reservation, error) {
	reservation, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.repo.CountOverlapping(ctx, reservation.ComputerID, reservation.StartsAt, reservation.EndsAt, reservation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to check overlap")
	}
	if overlapping > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slot already booked for this computer")
	}

	return s.transition(ctx, reservation, models.ReservationApproved, actorID)
}

// Reject transitions a pending reservation to rejected.
func (s *ReservationService) Reject(ctx context.Context, id, actorID string) (*models.Reservation, error) {
	reservation, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, reservation, models.ReservationRejected, actorID)
}

// Cancel lets the owner withdraw a pending or approved reservation.
func (s *ReservationService) Cancel(ctx context.Context, id, userID string) (*models.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reservation belongs to another account")
	}
	if reservation.Status != models.ReservationPending && reservation.Status != models.ReservationApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reservation can no longer be cancelled")
	}
	return s.transition(ctx, reservation, models.ReservationCancelled, userID)
}

func (s *ReservationService) load(ctx context.Context, id string) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load reservation")
	}
	return reservation, nil
}

func (s *ReservationService) loadPending(ctx context.Context, id string) (*models.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reservation already decided")
	}
	return reservation, nil
}

func (s *ReservationService) transition(ctx context.Context, reservation *models.Reservation, status models.ReservationStatus, actorID string) (*models.Reservation, error) {
	if err := s.repo.UpdateStatus(ctx, reservation.ID, status, &actorID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update reservation")
	}
	reservation.Status = status
	reservation.DecidedBy = &actorID
	return reservation, nil
}
