package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/security"
	"github.com/sohaibminhas1/lims-api/internal/service"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	"github.com/sohaibminhas1/lims-api/pkg/response"
)

type fakeAccountRepo struct {
	account *models.UserAccount
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, userID string) (*models.UserAccount, error) {
	if f.account == nil || f.account.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return f.account, nil
}

func (f *fakeAccountRepo) UpdateLastLogin(ctx context.Context, userID string, ts time.Time) error {
	return nil
}

func (f *fakeAccountRepo) UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	return nil
}

func newLoginRouter(t *testing.T, repo *fakeAccountRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(repo, nil, security.NewPasswordHasher(4), validation.New(), zap.NewNop(), service.AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "lims-api",
	})
	handler := NewAuthHandler(svc, nil)
	r := gin.New()
	r.POST("/auth/login", handler.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	hasher := security.NewPasswordHasher(4)
	hash, err := hasher.Hash("Str0ng!pass")
	require.NoError(t, err)
	repo := &fakeAccountRepo{account: &models.UserAccount{
		UserID:       "alice01",
		DisplayName:  "Alice",
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
		PasswordHash: hash,
	}}

	rec := postJSON(t, newLoginRouter(t, repo), "/auth/login", gin.H{"username": "alice01", "password": "Str0ng!pass"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
	data := envelope.Data.(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
}

func TestAuthHandlerLoginDeniedBodyIsGeneric(t *testing.T) {
	r := newLoginRouter(t, &fakeAccountRepo{})

	rec := postJSON(t, r, "/auth/login", gin.H{"username": "ghost", "password": "whatever"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
	// The body must not hint at the concrete cause.
	assert.NotContains(t, envelope.Error.Message, "ghost")
	assert.NotContains(t, envelope.Error.Message, "not found")
}

func TestAuthHandlerLoginMalformedPayload(t *testing.T) {
	r := newLoginRouter(t, &fakeAccountRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
