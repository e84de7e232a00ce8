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

const reservationColumns = `id, user_id, computer_id, lab, purpose, starts_at, ends_at, status, decided_by, created_at, updated_at`

// ReservationRepository provides database access for lab reservations.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new instance of ReservationRepository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// FindByID returns a reservation by identifier.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 LIMIT 1`
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find reservation by id: %w", err)
	}
	return &reservation, nil
}

// Create inserts a new reservation request.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	reservation.UpdatedAt = now

	const query = `INSERT INTO reservations (id, user_id, computer_id, lab, purpose, starts_at, ends_at, status, created_at, updated_at) VALUES (:id, :user_id, :computer_id, :lab, :purpose, :starts_at, :ends_at, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reservation); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// UpdateStatus transitions a reservation recording who decided it.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus, decidedBy *string) error {
	const query = `UPDATE reservations SET status = $2, decided_by = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, decidedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	return nil
}

// CountOverlapping counts approved reservations for the same computer
// intersecting the given window.
func (r *ReservationRepository) CountOverlapping(ctx context.Context, computerID string, startsAt, endsAt time.Time, excludeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE computer_id = $1 AND status = $2 AND starts_at < $4 AND ends_at > $3 AND id <> $5`
	var count int
	if err := r.db.GetContext(ctx, &count, query, computerID, models.ReservationApproved, startsAt, endsAt, excludeID); err != nil {
		return 0, fmt.Errorf("count overlapping reservations: %w", err)
	}
	return count, nil
}

// CountOpenByUser counts a user's pending plus approved reservations.
func (r *ReservationRepository) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status IN ($2, $3)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, models.ReservationPending, models.ReservationApproved); err != nil {
		return 0, fmt.Errorf("count open reservations: %w", err)
	}
	return count, nil
}

func reservationWhere(filter models.ReservationFilter) (string, []interface{}) {
	baseQuery := `FROM reservations WHERE 1=1`
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

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	return baseQuery, args
}

// List returns reservations based on filters with total count.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	baseQuery, args := reservationWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY starts_at DESC LIMIT %d OFFSET %d", reservationColumns, baseQuery, pageSize, offset)

	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	return reservations, total, nil
}

// ListForExport returns matching reservations for report rendering,
// newest first. The page-size clamp does not apply; limit caps the row
// count directly.
func (r *ReservationRepository) ListForExport(ctx context.Context, filter models.ReservationFilter, limit int) ([]models.Reservation, error) {
	if limit <= 0 {
		limit = 5000
	}
	baseQuery, args := reservationWhere(filter)

	query := fmt.Sprintf("SELECT %s %s ORDER BY starts_at DESC LIMIT %d", reservationColumns, baseQuery, limit)

	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list reservations for export: %w", err)
	}
	return reservations, nil
}
