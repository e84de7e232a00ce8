package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sohaibminhas1/lims-api/internal/models"
)

const softwareRequestColumns = `id, user_id, computer_id, software_name, version, justification, status, decided_by, created_at, updated_at`

// SoftwareRequestRepository provides database access for software requests.
type SoftwareRequestRepository struct {
	db *sqlx.DB
}

// NewSoftwareRequestRepository creates a new instance of SoftwareRequestRepository.
func NewSoftwareRequestRepository(db *sqlx.DB) *SoftwareRequestRepository {
	return &SoftwareRequestRepository{db: db}
}

// FindByID returns a software request by identifier.
func (r *SoftwareRequestRepository) FindByID(ctx context.Context, id string) (*models.SoftwareRequest, error) {
	query := `SELECT ` + softwareRequestColumns + ` FROM software_requests WHERE id = $1 LIMIT 1`
	var request models.SoftwareRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find software request by id: %w", err)
	}
	return &request, nil
}

// Create inserts a new software request.
func (r *SoftwareRequestRepository) Create(ctx context.Context, request *models.SoftwareRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO software_requests (id, user_id, computer_id, software_name, version, justification, status, created_at, updated_at) VALUES (:id, :user_id, :computer_id, :software_name, :version, :justification, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create software request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a software request recording who decided it.
func (r *SoftwareRequestRepository) UpdateStatus(ctx context.Context, id string, status models.SoftwareRequestStatus, decidedBy *string) error {
	const query = `UPDATE software_requests SET status = $2, decided_by = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, decidedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("update software request status: %w", err)
	}
	return nil
}

// List returns software requests based on filters with total count.
func (r *SoftwareRequestRepository) List(ctx context.Context, filter models.SoftwareRequestFilter) ([]models.SoftwareRequest, int, error) {
	baseQuery := `FROM software_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", softwareRequestColumns, baseQuery, pageSize, offset)

	var requests []models.SoftwareRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list software requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count software requests: %w", err)
	}

	return requests, total, nil
}
