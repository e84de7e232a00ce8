package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sohaibminhas1/lims-api/internal/models"
)

// DashboardRepository runs the aggregate statistics queries behind the
// role dashboards.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new instance of DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// AdminStats collects fleet-wide counters for the admin dashboard.
func (r *DashboardRepository) AdminStats(ctx context.Context) (*models.AdminDashboard, error) {
	stats := &models.AdminDashboard{ComputersByStatus: map[string]int{}}

	var byStatus []statusCount
	if err := r.db.SelectContext(ctx, &byStatus, `SELECT status, COUNT(*) AS count FROM computers GROUP BY status`); err != nil {
		return nil, fmt.Errorf("computers by status: %w", err)
	}
	for _, sc := range byStatus {
		stats.ComputersByStatus[sc.Status] = sc.Count
		stats.TotalComputers += sc.Count
	}

	if err := r.db.GetContext(ctx, &stats.ActiveUsers, `SELECT COUNT(*) FROM user_accounts WHERE status = $1`, models.StatusActive); err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.PendingReservations, `SELECT COUNT(*) FROM reservations WHERE status = $1`, models.ReservationPending); err != nil {
		return nil, fmt.Errorf("count pending reservations: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.PendingSoftware, `SELECT COUNT(*) FROM software_requests WHERE status = $1`, models.SoftwarePending); err != nil {
		return nil, fmt.Errorf("count pending software requests: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.OpenComplaints, `SELECT COUNT(*) FROM complaints WHERE status IN ($1, $2)`, models.ComplaintOpen, models.ComplaintInProgress); err != nil {
		return nil, fmt.Errorf("count open complaints: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.FeedbackCount, `SELECT COUNT(*) FROM feedback`); err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.AverageFeedbackScore, `SELECT COALESCE(AVG(rating), 0) FROM feedback`); err != nil {
		return nil, fmt.Errorf("average feedback score: %w", err)
	}

	return stats, nil
}

// UserStats collects per-account counters for teacher/student dashboards.
func (r *DashboardRepository) UserStats(ctx context.Context, userID string) (*models.UserDashboard, error) {
	stats := &models.UserDashboard{UserID: userID}

	if err := r.db.GetContext(ctx, &stats.UpcomingReservations, `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status = $2 AND starts_at > NOW()`, userID, models.ReservationApproved); err != nil {
		return nil, fmt.Errorf("count upcoming reservations: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.PendingReservations, `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status = $2`, userID, models.ReservationPending); err != nil {
		return nil, fmt.Errorf("count pending reservations: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.PendingSoftware, `SELECT COUNT(*) FROM software_requests WHERE user_id = $1 AND status = $2`, userID, models.SoftwarePending); err != nil {
		return nil, fmt.Errorf("count pending software requests: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.OpenComplaints, `SELECT COUNT(*) FROM complaints WHERE user_id = $1 AND status IN ($2, $3)`, userID, models.ComplaintOpen, models.ComplaintInProgress); err != nil {
		return nil, fmt.Errorf("count open complaints: %w", err)
	}

	return stats, nil
}

// TechnicianStats collects workload counters for lab technicians.
func (r *DashboardRepository) TechnicianStats(ctx context.Context, userID string) (*models.TechnicianDashboard, error) {
	stats := &models.TechnicianDashboard{UserID: userID}

	if err := r.db.GetContext(ctx, &stats.AssignedComplaints, `SELECT COUNT(*) FROM complaints WHERE assigned_to = $1 AND status IN ($2, $3)`, userID, models.ComplaintOpen, models.ComplaintInProgress); err != nil {
		return nil, fmt.Errorf("count assigned complaints: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.MachinesInRepair, `SELECT COUNT(*) FROM computers WHERE status = $1`, models.ComputerMaintenance); err != nil {
		return nil, fmt.Errorf("count machines in repair: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.PendingInstalls, `SELECT COUNT(*) FROM software_requests WHERE status = $1`, models.SoftwareApproved); err != nil {
		return nil, fmt.Errorf("count pending installs: %w", err)
	}

	return stats, nil
}
