package models

import "time"

// ReservationStatus tracks the lab reservation workflow.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationApproved  ReservationStatus = "APPROVED"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// Reservation represents a lab/computer booking request.
type Reservation struct {
	ID         string            `db:"id" json:"id"`
	UserID     string            `db:"user_id" json:"user_id"`
	ComputerID string            `db:"computer_id" json:"computer_id"`
	Lab        string            `db:"lab" json:"lab"`
	Purpose    string            `db:"purpose" json:"purpose"`
	StartsAt   time.Time         `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time         `db:"ends_at" json:"ends_at"`
	Status     ReservationStatus `db:"status" json:"status"`
	DecidedBy  *string           `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// ReservationFilter captures list filtering for reservations.
type ReservationFilter struct {
	UserID   string
	Lab      string
	Status   *ReservationStatus
	Page     int
	PageSize int
}
