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

const computerColumns = `id, asset_tag, lab, specification, status, created_at, updated_at`

// ComputerRepository provides database access for the lab inventory.
type ComputerRepository struct {
	db *sqlx.DB
}

// NewComputerRepository creates a new instance of ComputerRepository.
func NewComputerRepository(db *sqlx.DB) *ComputerRepository {
	return &ComputerRepository{db: db}
}

// FindByID returns a computer by identifier.
func (r *ComputerRepository) FindByID(ctx context.Context, id string) (*models.Computer, error) {
	query := `SELECT ` + computerColumns + ` FROM computers WHERE id = $1 LIMIT 1`
	var computer models.Computer
	if err := r.db.GetContext(ctx, &computer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find computer by id: %w", err)
	}
	return &computer, nil
}

// Create inserts a new computer record.
func (r *ComputerRepository) Create(ctx context.Context, computer *models.Computer) error {
	if computer.ID == "" {
		computer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if computer.CreatedAt.IsZero() {
		computer.CreatedAt = now
	}
	computer.UpdatedAt = now

	const query = `INSERT INTO computers (id, asset_tag, lab, specification, status, created_at, updated_at) VALUES (:id, :asset_tag, :lab, :specification, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, computer); err != nil {
		return fmt.Errorf("create computer: %w", err)
	}
	return nil
}

// Update updates mutable fields of a computer.
func (r *ComputerRepository) Update(ctx context.Context, computer *models.Computer) error {
	computer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE computers SET asset_tag = :asset_tag, lab = :lab, specification = :specification, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, computer); err != nil {
		return fmt.Errorf("update computer: %w", err)
	}
	return nil
}

// UpdateStatus changes only the status column.
func (r *ComputerRepository) UpdateStatus(ctx context.Context, id string, status models.ComputerStatus) error {
	const query = `UPDATE computers SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update computer status: %w", err)
	}
	return nil
}

// List returns computers based on filters with total count.
func (r *ComputerRepository) List(ctx context.Context, filter models.ComputerFilter) ([]models.Computer, int, error) {
	baseQuery := `FROM computers WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Lab != "" {
		conditions = append(conditions, fmt.Sprintf("lab = $%d", len(args)+1))
		args = append(args, filter.Lab)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(asset_tag) LIKE $%d OR LOWER(specification) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY asset_tag ASC LIMIT %d OFFSET %d", computerColumns, baseQuery, pageSize, offset)

	var computers []models.Computer
	if err := r.db.SelectContext(ctx, &computers, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list computers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count computers: %w", err)
	}

	return computers, total, nil
}
