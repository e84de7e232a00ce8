package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/security"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserAccount, int, error)
	FindByID(ctx context.Context, userID string) (*models.UserAccount, error)
	Exists(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, account *models.UserAccount) error
	Update(ctx context.Context, account *models.UserAccount) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
	Deactivate(ctx context.Context, userID string) error
}

// CreateUserRequest represents payload for creating accounts.
type CreateUserRequest struct {
	UserID      string          `json:"user_id" validate:"required,username"`
	DisplayName string          `json:"display_name" validate:"required,display_name"`
	Password    string          `json:"password" validate:"required,password_strength"`
	Role        models.UserRole `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT LAB_TECHNICIAN"`
	Department  string          `json:"department"`
	AccessLevel string          `json:"access_level"`
}

// UpdateUserRequest payload for updating account profiles. The password
// is never touched here; the reset and change flows own that field.
type UpdateUserRequest struct {
	DisplayName string                `json:"display_name" validate:"required,display_name"`
	Role        models.UserRole       `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT LAB_TECHNICIAN"`
	Department  string                `json:"department"`
	AccessLevel string                `json:"access_level"`
	Status      *models.AccountStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
}

type auditStore interface {
	auditWriter
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditLog, error)
}

// UserService handles account administration workflows. Routes invoking
// it sit behind an admin-only RBAC gate.
type UserService struct {
	repo      userRepository
	audit     auditStore
	hasher    *security.PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit auditStore, hasher *security.PasswordHasher, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if hasher == nil {
		hasher = security.NewPasswordHasher(0)
	}
	return &UserService{repo: repo, audit: audit, hasher: hasher, validator: validate, logger: logger}
}

// List returns paginated accounts and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserAccount, *models.Pagination, error) {
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list accounts")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return accounts, pagination, nil
}

// Get returns an account by user id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.UserAccount, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load account")
	}
	return account, nil
}

// Create adds a new account. New accounts start out active.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actorID string, meta models.LoginRequest) (*models.UserAccount, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	exists, err := s.repo.Exists(ctx, req.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to check user id uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user id already exists")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.UserAccount{
		UserID:       req.UserID,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		Department:   req.Department,
		AccessLevel:  req.AccessLevel,
		Status:       models.StatusActive,
		PasswordHash: passwordHash,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to create account")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"user_id": account.UserID, "role": account.Role})
	s.writeAudit(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserCreate,
		Resource:   "users",
		ResourceID: &account.UserID,
		NewValues:  newPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return account, nil
}

// Update modifies the profile attributes of an account.
func (s *UserService) Update(ctx context.Context, userID string, req UpdateUserRequest, actorID string, meta models.LoginRequest) (*models.UserAccount, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load account")
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"role": account.Role, "status": account.Status})

	account.DisplayName = req.DisplayName
	account.Role = req.Role
	account.Department = req.Department
	account.AccessLevel = req.AccessLevel
	if req.Status != nil {
		account.Status = *req.Status
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update account")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"role": account.Role, "status": account.Status})
	s.writeAudit(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserUpdate,
		Resource:   "users",
		ResourceID: &account.UserID,
		OldValues:  oldPayload,
		NewValues:  newPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return account, nil
}

// Deactivate performs a soft delete by marking the account inactive. The
// record itself stays in the store.
func (s *UserService) Deactivate(ctx context.Context, userID string, actorID string, meta models.LoginRequest) error {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load account")
	}

	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to deactivate account")
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"status": account.Status})
	newPayload, _ := json.Marshal(map[string]interface{}{"status": models.StatusInactive})
	s.writeAudit(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserDeactivate,
		Resource:   "users",
		ResourceID: &account.UserID,
		OldValues:  oldPayload,
		NewValues:  newPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return nil
}

// ResetPassword replaces an account's password without verifying the old
// one. The acting administrator is recorded in the audit trail; the
// strength rule still applies.
func (s *UserService) ResetPassword(ctx context.Context, userID string, req models.ResetPasswordRequest, actorID string, meta models.LoginRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load account")
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update password")
	}

	payload, _ := json.Marshal(map[string]string{"mode": "admin_reset", "actor": actorID})
	s.writeAudit(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionPasswordReset,
		Resource:   "users",
		ResourceID: &userID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return nil
}

// AuditTrail returns recent audit entries for one account, newest first.
func (s *UserService) AuditTrail(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load account")
	}

	if s.audit == nil {
		return []models.AuditLog{}, nil
	}
	logs, err := s.audit.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list audit logs")
	}
	return logs, nil
}

func (s *UserService) writeAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}
