package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sohaibminhas1/lims-api/internal/models"
)

const userColumns = `user_id, display_name, role, department, access_level, status, password_hash, last_login, created_at, updated_at`

// UserRepository provides database access for LIMS accounts. The user id
// is the natural key; rows are never physically removed, deactivation is
// a status flip.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns an account by user id.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*models.UserAccount, error) {
	query := `SELECT ` + userColumns + ` FROM user_accounts WHERE user_id = $1 LIMIT 1`
	var account models.UserAccount
	if err := r.db.GetContext(ctx, &account, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// Exists reports whether an account with the given user id is stored.
func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM user_accounts WHERE user_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, account *models.UserAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	const query = `INSERT INTO user_accounts (user_id, display_name, role, department, access_level, status, password_hash, created_at, updated_at) VALUES (:user_id, :display_name, :role, :department, :access_level, :status, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Update updates the profile fields of an account. The password hash is
// deliberately untouched; UpdatePassword owns that column.
func (r *UserRepository) Update(ctx context.Context, account *models.UserAccount) error {
	account.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_accounts SET display_name = :display_name, role = :role, department = :department, access_level = :access_level, status = :status, updated_at = :updated_at WHERE user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash in a single statement,
// so readers observe either the old or the new hash, never a partial one.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE user_accounts SET password_hash = $2, updated_at = $3 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateLastLogin records the last successful authentication time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, ts time.Time) error {
	const query = `UPDATE user_accounts SET last_login = $2, updated_at = $3 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Deactivate performs a soft delete by setting the account inactive.
func (r *UserRepository) Deactivate(ctx context.Context, userID string) error {
	const query = `UPDATE user_accounts SET status = $2, updated_at = $3 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, models.StatusInactive, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	return nil
}

// List returns accounts based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.UserAccount, int, error) {
	baseQuery := `FROM user_accounts WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(user_id) LIKE $%d OR LOWER(display_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"user_id":      true,
		"display_name": true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", userColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var accounts []models.UserAccount
	if err := r.db.SelectContext(ctx, &accounts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}
