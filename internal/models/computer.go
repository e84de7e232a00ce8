package models

import "time"

// ComputerStatus tracks the operational state of a lab machine.
type ComputerStatus string

const (
	ComputerAvailable   ComputerStatus = "AVAILABLE"
	ComputerInUse       ComputerStatus = "IN_USE"
	ComputerMaintenance ComputerStatus = "MAINTENANCE"
	ComputerRetired     ComputerStatus = "RETIRED"
)

// Computer represents a lab machine in the inventory.
type Computer struct {
	ID            string         `db:"id" json:"id"`
	AssetTag      string         `db:"asset_tag" json:"asset_tag"`
	Lab           string         `db:"lab" json:"lab"`
	Specification string         `db:"specification" json:"specification"`
	Status        ComputerStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ComputerFilter captures list filtering for the inventory.
type ComputerFilter struct {
	Lab      string
	Status   *ComputerStatus
	Search   string
	Page     int
	PageSize int
}
