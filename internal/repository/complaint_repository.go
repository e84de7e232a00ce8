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

const complaintColumns = `id, user_id, computer_id, lab, category, description, status, assigned_to, resolution, created_at, updated_at`

// ComplaintRepository provides database access for complaints.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new instance of ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// FindByID returns a complaint by identifier.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1 LIMIT 1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint by id: %w", err)
	}
	return &complaint, nil
}

// Create inserts a new complaint.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now

	const query = `INSERT INTO complaints (id, user_id, computer_id, lab, category, description, status, created_at, updated_at) VALUES (:id, :user_id, :computer_id, :lab, :category, :description, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// Update updates the workflow fields of a complaint.
func (r *ComplaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	complaint.UpdatedAt = time.Now().UTC()
	const query = `UPDATE complaints SET status = :status, assigned_to = :assigned_to, resolution = :resolution, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	return nil
}

func complaintWhere(filter models.ComplaintFilter) (string, []interface{}) {
	baseQuery := `FROM complaints WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Lab != "" {
		conditions = append(conditions, fmt.Sprintf("lab = $%d", len(args)+1))
		args = append(args, filter.Lab)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", len(args)+1))
		args = append(args, filter.AssignedTo)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	return baseQuery, args
}

// List returns complaints based on filters with total count.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	baseQuery, args := complaintWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", complaintColumns, baseQuery, pageSize, offset)

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	return complaints, total, nil
}

// ListForExport returns matching complaints for report rendering, newest
// first. The page-size clamp does not apply; limit caps the row count
// directly.
func (r *ComplaintRepository) ListForExport(ctx context.Context, filter models.ComplaintFilter, limit int) ([]models.Complaint, error) {
	if limit <= 0 {
		limit = 5000
	}
	baseQuery, args := complaintWhere(filter)

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d", complaintColumns, baseQuery, limit)

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("list complaints for export: %w", err)
	}
	return complaints, nil
}
