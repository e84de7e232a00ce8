package models

import "time"

// ComplaintStatus tracks the complaint lifecycle.
type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "OPEN"
	ComplaintInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintResolved   ComplaintStatus = "RESOLVED"
	ComplaintClosed     ComplaintStatus = "CLOSED"
)

// Complaint represents a fault report against a lab or machine.
type Complaint struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	ComputerID  *string         `db:"computer_id" json:"computer_id,omitempty"`
	Lab         string          `db:"lab" json:"lab"`
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description" json:"description"`
	Status      ComplaintStatus `db:"status" json:"status"`
	AssignedTo  *string         `db:"assigned_to" json:"assigned_to,omitempty"`
	Resolution  string          `db:"resolution" json:"resolution"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ComplaintFilter captures list filtering for complaints.
type ComplaintFilter struct {
	UserID     string
	Lab        string
	Status     *ComplaintStatus
	AssignedTo string
	Page       int
	PageSize   int
}
