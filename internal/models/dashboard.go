package models

// AdminDashboard aggregates fleet-wide statistics for the admin view.
type AdminDashboard struct {
	TotalComputers       int            `json:"total_computers"`
	ComputersByStatus    map[string]int `json:"computers_by_status"`
	ActiveUsers          int            `json:"active_users"`
	PendingReservations  int            `json:"pending_reservations"`
	PendingSoftware      int            `json:"pending_software_requests"`
	OpenComplaints       int            `json:"open_complaints"`
	FeedbackCount        int            `json:"feedback_count"`
	AverageFeedbackScore float64        `json:"average_feedback_score"`
}

// UserDashboard aggregates per-account statistics for teacher and
// student views.
type UserDashboard struct {
	UserID               string `json:"user_id"`
	UpcomingReservations int    `json:"upcoming_reservations"`
	PendingReservations  int    `json:"pending_reservations"`
	PendingSoftware      int    `json:"pending_software_requests"`
	OpenComplaints       int    `json:"open_complaints"`
}

// TechnicianDashboard aggregates workload statistics for lab technicians.
type TechnicianDashboard struct {
	UserID             string `json:"user_id"`
	AssignedComplaints int    `json:"assigned_complaints"`
	MachinesInRepair   int    `json:"machines_in_repair"`
	PendingInstalls    int    `json:"pending_installs"`
}
