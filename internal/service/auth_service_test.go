package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/security"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type mockAuthRepo struct {
	account           *models.UserAccount
	findErr           error
	updatePasswordErr error
	lastLoginUpdated  bool
}

func (m *mockAuthRepo) FindByID(ctx context.Context, userID string) (*models.UserAccount, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.account == nil || m.account.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return m.account, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, userID string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	if m.account != nil && m.account.UserID == userID {
		m.account.PasswordHash = passwordHash
	}
	return nil
}

type mockAuditWriter struct {
	logs []*models.AuditLog
}

func (m *mockAuditWriter) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockAuditWriter) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, log := range m.logs {
		if log.UserID != nil && *log.UserID == userID {
			out = append(out, *log)
		}
	}
	return out, nil
}

func (m *mockAuditWriter) lastAction() string {
	if len(m.logs) == 0 {
		return ""
	}
	return m.logs[len(m.logs)-1].Action
}

var testHasher = security.NewPasswordHasher(4)

func newTestAuthService(repo *mockAuthRepo, audit *mockAuditWriter) *AuthService {
	return NewAuthService(repo, audit, testHasher, validation.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "lims-api",
	})
}

func activeAccount(t *testing.T, userID, password string) *models.UserAccount {
	t.Helper()
	hash, err := testHasher.Hash(password)
	require.NoError(t, err)
	return &models.UserAccount{
		UserID:       userID,
		DisplayName:  "Test Account",
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
		PasswordHash: hash,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	audit := &mockAuditWriter{}
	svc := newTestAuthService(repo, audit)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	assert.Equal(t, "alice01", res.User.UserID)
	assert.True(t, repo.lastLoginUpdated)
	assert.Equal(t, models.AuditActionLogin, audit.lastAction())
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	repo := &mockAuthRepo{}
	audit := &mockAuditWriter{}
	svc := newTestAuthService(repo, audit)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, models.AuditActionLoginDenied, audit.lastAction())
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Wr0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	account := activeAccount(t, "alice01", "Str0ng!pass")
	account.Status = models.StatusInactive
	repo := &mockAuthRepo{account: account}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSuspended(t *testing.T) {
	account := activeAccount(t, "alice01", "Str0ng!pass")
	account.Status = models.StatusSuspended
	repo := &mockAuthRepo{account: account}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginEmptyCredentials(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{}, &mockAuditWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginMissingHash(t *testing.T) {
	account := activeAccount(t, "alice01", "Str0ng!pass")
	account.PasswordHash = "   "
	repo := &mockAuthRepo{account: account}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStorageFailure(t *testing.T) {
	repo := &mockAuthRepo{findErr: errors.New("connection refused")}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

// Every denial must be indistinguishable to the caller regardless of
// the underlying cause.
func TestAuthServiceDenialUniformity(t *testing.T) {
	inactive := activeAccount(t, "bob02", "Str0ng!pass")
	inactive.Status = models.StatusInactive

	cases := []struct {
		name string
		repo *mockAuthRepo
		req  models.LoginRequest
	}{
		{"unknown user", &mockAuthRepo{}, models.LoginRequest{Username: "ghost", Password: "Str0ng!pass"}},
		{"wrong password", &mockAuthRepo{account: activeAccount(t, "bob02", "Str0ng!pass")}, models.LoginRequest{Username: "bob02", Password: "nope"}},
		{"inactive", &mockAuthRepo{account: inactive}, models.LoginRequest{Username: "bob02", Password: "Str0ng!pass"}},
		{"storage down", &mockAuthRepo{findErr: errors.New("boom")}, models.LoginRequest{Username: "bob02", Password: "Str0ng!pass"}},
	}

	var messages []string
	for _, tc := range cases {
		svc := newTestAuthService(tc.repo, &mockAuditWriter{})
		_, err := svc.Login(context.Background(), tc.req)
		require.Error(t, err, tc.name)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code, tc.name)
		messages = append(messages, appErr.Message)
	}
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestAuthServiceLoginIdempotent(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	for i := 0; i < 3; i++ {
		res, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, res.User.Role)
	}
}

func TestAuthServiceDeniedLoginAuditsCause(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := newTestAuthService(&mockAuthRepo{}, audit)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "x", IP: "10.0.0.1"})
	require.Error(t, err)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLoginDenied, audit.logs[0].Action)
	assert.Contains(t, string(audit.logs[0].NewValues), "unknown user")
	assert.Equal(t, "10.0.0.1", audit.logs[0].IPAddress)
}

// Failed attempts against an existing account are attributed to it, so
// they surface in the account's audit trail. Unknown usernames stay
// unattributed and only appear in the payload.
func TestAuthServiceDeniedLoginAttributedToAccount(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	audit := &mockAuditWriter{}
	svc := newTestAuthService(repo, audit)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "nope"})
	require.Error(t, err)
	require.Len(t, audit.logs, 1)
	require.NotNil(t, audit.logs[0].UserID)
	assert.Equal(t, "alice01", *audit.logs[0].UserID)

	trail, err := audit.ListByUser(context.Background(), "alice01", 10)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, models.AuditActionLoginDenied, trail[0].Action)
}

func TestAuthServiceDeniedLoginUnknownUserUnattributed(t *testing.T) {
	audit := &mockAuditWriter{}
	svc := newTestAuthService(&mockAuthRepo{}, audit)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "x"})
	require.Error(t, err)
	require.Len(t, audit.logs, 1)
	assert.Nil(t, audit.logs[0].UserID)
	require.NotNil(t, audit.logs[0].ResourceID)
	assert.Equal(t, "ghost", *audit.logs[0].ResourceID)
	assert.Contains(t, string(audit.logs[0].NewValues), "ghost")
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	audit := &mockAuditWriter{}
	svc := newTestAuthService(repo, audit)

	err := svc.ChangePassword(context.Background(), "alice01", models.ChangePasswordRequest{
		CurrentPassword: "Str0ng!pass",
		NewPassword:     "N3w!passw0rd",
	})
	require.NoError(t, err)
	assert.True(t, testHasher.Verify("N3w!passw0rd", repo.account.PasswordHash))
	assert.False(t, testHasher.Verify("Str0ng!pass", repo.account.PasswordHash))
	assert.Equal(t, models.AuditActionPasswordChange, audit.lastAction())

	// The old password no longer authenticates; the new one does.
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.Error(t, err)
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "N3w!passw0rd"})
	require.NoError(t, err)
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	err := svc.ChangePassword(context.Background(), "alice01", models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "N3w!passw0rd",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.True(t, testHasher.Verify("Str0ng!pass", repo.account.PasswordHash))
}

func TestAuthServiceChangePasswordWeakNew(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	err := svc.ChangePassword(context.Background(), "alice01", models.ChangePasswordRequest{
		CurrentPassword: "Str0ng!pass",
		NewPassword:     "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t, "alice01", "Str0ng!pass")}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice01", Password: "Str0ng!pass"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice01", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenTampered(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{}, &mockAuditWriter{})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
