package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohaibminhas1/lims-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func accountRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "display_name", "role", "department", "access_level", "status", "password_hash", "last_login", "created_at", "updated_at"}).
		AddRow("alice01", "Alice", string(models.RoleStudent), "CS", "standard", string(models.StatusActive), "hash", now, now, now)
}

func TestFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, display_name, role, department, access_level, status, password_hash, last_login, created_at, updated_at FROM user_accounts WHERE user_id = $1 LIMIT 1")).
		WithArgs("alice01").
		WillReturnRows(accountRows(time.Now()))

	account, err := repo.FindByID(context.Background(), "alice01")
	require.NoError(t, err)
	assert.Equal(t, "alice01", account.UserID)
	assert.Equal(t, models.StatusActive, account.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .* FROM user_accounts WHERE user_id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM user_accounts WHERE user_id = $1)")).
		WithArgs("alice01").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "alice01")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO user_accounts").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.UserAccount{
		UserID:       "alice01",
		DisplayName:  "Alice",
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_accounts SET password_hash = $2, updated_at = $3 WHERE user_id = $1")).
		WithArgs("alice01", "newhash", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "alice01", "newhash", now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_accounts SET status = $2, updated_at = $3 WHERE user_id = $1")).
		WithArgs("alice01", models.StatusInactive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), "alice01")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, display_name, role, department, access_level, status, password_hash, last_login, created_at, updated_at FROM user_accounts WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(accountRows(time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_accounts WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	accounts, total, err := repo.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccountsFiltered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	role := models.RoleStudent
	status := models.StatusActive

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, display_name, role, department, access_level, status, password_hash, last_login, created_at, updated_at FROM user_accounts WHERE 1=1 AND role = $1 AND status = $2 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(role, status).
		WillReturnRows(accountRows(time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_accounts WHERE 1=1 AND role = $1 AND status = $2")).
		WithArgs(role, status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	accounts, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
