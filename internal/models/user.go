package models

import "time"

// UserRole represents the closed set of roles a LIMS account can hold.
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleTeacher       UserRole = "TEACHER"
	RoleStudent       UserRole = "STUDENT"
	RoleLabTechnician UserRole = "LAB_TECHNICIAN"
)

// ValidRole reports whether the role belongs to the closed enumeration.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleLabTechnician:
		return true
	}
	return false
}

// AccountStatus describes the lifecycle state of an account. Only
// StatusActive permits authentication.
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusInactive  AccountStatus = "INACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
)

// UserAccount represents a LIMS account stored in the user_accounts table.
// The user id is the natural key, chosen at creation and immutable.
type UserAccount struct {
	UserID       string        `db:"user_id" json:"user_id"`
	DisplayName  string        `db:"display_name" json:"display_name"`
	Role         UserRole      `db:"role" json:"role"`
	Department   string        `db:"department" json:"department"`
	AccessLevel  string        `db:"access_level" json:"access_level"`
	Status       AccountStatus `db:"status" json:"status"`
	PasswordHash string        `db:"password_hash" json:"-"`
	LastLogin    *time.Time    `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing accounts.
type UserFilter struct {
	Role       *UserRole
	Status     *AccountStatus
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
