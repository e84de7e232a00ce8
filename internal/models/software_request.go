package models

import "time"

// SoftwareRequestStatus tracks the software installation workflow.
type SoftwareRequestStatus string

const (
	SoftwarePending   SoftwareRequestStatus = "PENDING"
	SoftwareApproved  SoftwareRequestStatus = "APPROVED"
	SoftwareRejected  SoftwareRequestStatus = "REJECTED"
	SoftwareInstalled SoftwareRequestStatus = "INSTALLED"
)

// SoftwareRequest represents a request to install software on a lab machine.
type SoftwareRequest struct {
	ID            string                `db:"id" json:"id"`
	UserID        string                `db:"user_id" json:"user_id"`
	ComputerID    string                `db:"computer_id" json:"computer_id"`
	SoftwareName  string                `db:"software_name" json:"software_name"`
	Version       string                `db:"version" json:"version"`
	Justification string                `db:"justification" json:"justification"`
	Status        SoftwareRequestStatus `db:"status" json:"status"`
	DecidedBy     *string               `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt     time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time             `db:"updated_at" json:"updated_at"`
}

// SoftwareRequestFilter captures list filtering for software requests.
type SoftwareRequestFilter struct {
	UserID   string
	Status   *SoftwareRequestStatus
	Page     int
	PageSize int
}
