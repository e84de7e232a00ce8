package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/security"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type authUserRepository interface {
	FindByID(ctx context.Context, userID string) (*models.UserAccount, error)
	UpdateLastLogin(ctx context.Context, userID string, ts time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for session token issuance.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthService is the single authorization decision point. It owns the
// lookup + verify + status-gate sequence and collapses every failure into
// one undifferentiated denial; the concrete cause is only ever written to
// the audit trail.
type AuthService struct {
	repo      authUserRepository
	audit     auditWriter
	hasher    *security.PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, audit auditWriter, hasher *security.PasswordHasher, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if hasher == nil {
		hasher = security.NewPasswordHasher(0)
	}
	return &AuthService{repo: repo, audit: audit, hasher: hasher, validator: validate, logger: logger, config: config}
}

// Login authenticates an account and returns a session token carrying its
// role. Unknown user, wrong password, missing hash, non-active status and
// storage failure all produce the same INVALID_CREDENTIALS outcome.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, s.deny(ctx, req, nil, "empty credentials")
	}

	account, err := s.repo.FindByID(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.deny(ctx, req, nil, "unknown user")
		}
		// Fail closed: a store outage must never grant access or leak
		// a distinguishable error to the caller.
		s.logger.Error("credential store lookup failed", zap.Error(err))
		return nil, s.deny(ctx, req, nil, "storage unavailable")
	}

	if strings.TrimSpace(account.PasswordHash) == "" {
		return nil, s.deny(ctx, req, account, "missing password hash")
	}

	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		return nil, s.deny(ctx, req, account, "wrong password")
	}

	if account.Status != models.StatusActive {
		return nil, s.deny(ctx, req, account, fmt.Sprintf("status %s", account.Status))
	}

	token, expiresAt, err := s.generateToken(account)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, account.UserID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	s.writeAudit(ctx, &models.AuditLog{
		UserID:     &account.UserID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &account.UserID,
		NewValues:  []byte(`{"status":"success"}`),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
		IssuedAt:    now,
		User: models.UserInfo{
			UserID:      account.UserID,
			DisplayName: account.DisplayName,
			Role:        account.Role,
			Department:  account.Department,
			AccessLevel: account.AccessLevel,
		},
	}, nil
}

// ChangePassword performs a self-service password change. The current
// password is re-verified and the account must still be active before the
// new password is accepted.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Reason(err))
	}

	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load account")
	}

	if !s.hasher.Verify(req.CurrentPassword, account.PasswordHash) || account.Status != models.StatusActive {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to update password")
	}

	s.writeAudit(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionPasswordChange,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(`{"mode":"self_service"}`),
	})

	return nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// deny records the concrete cause internally and returns the generic
// denial given to the caller. When the account exists the audit row is
// attributed to it, so its failed attempts show up in the audit trail.
func (s *AuthService) deny(ctx context.Context, req models.LoginRequest, account *models.UserAccount, cause string) error {
	s.logger.Info("login denied",
		zap.String("username", req.Username),
		zap.String("cause", cause),
		zap.String("ip", req.IP),
	)

	attempted := strings.TrimSpace(req.Username)
	payload, _ := json.Marshal(map[string]string{"cause": cause, "username": attempted})
	log := &models.AuditLog{
		Action:    models.AuditActionLoginDenied,
		Resource:  "auth",
		NewValues: payload,
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
	// audit_logs.user_id references user_accounts; only rows for
	// accounts that exist may carry it.
	if account != nil {
		log.UserID = &account.UserID
		log.ResourceID = &account.UserID
	} else if attempted != "" {
		log.ResourceID = &attempted
	}
	s.writeAudit(ctx, log)

	return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
}

func (s *AuthService) writeAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

func (s *AuthService) generateToken(account *models.UserAccount) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UserID:      account.UserID,
		Role:        account.Role,
		DisplayName: account.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   account.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
